package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AutoDJ/config"
	"AutoDJ/core/mixjob"
	"AutoDJ/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventsMixRepo serves one mix and can publish a status event while the
// handler is reading the current status, simulating a job finishing at
// exactly that moment.
type eventsMixRepo struct {
	mix    *model.Mix
	broker *mixjob.Broker
	onGet  *mixjob.StatusEvent
}

func (r *eventsMixRepo) CreateMix(*model.Mix) error { return nil }
func (r *eventsMixRepo) GetMixByID(string) (*model.Mix, error) {
	if r.onGet != nil {
		r.broker.Publish(*r.onGet)
	}
	return r.mix, nil
}
func (r *eventsMixRepo) GetMixes(string) ([]*model.Mix, error)     { return nil, nil }
func (r *eventsMixRepo) MarkProcessing(string) error               { return nil }
func (r *eventsMixRepo) CompleteMix(string, float64, string) error { return nil }
func (r *eventsMixRepo) FailMix(string) error                      { return nil }

func dialMixEvents(t *testing.T, repo *eventsMixRepo, broker *mixjob.Broker, mixID string) *websocket.Conn {
	t.Helper()
	runner := mixjob.NewRunner(&config.Config{}, nil, repo, nil, nil, nil, nil, broker)
	handler := NewAPIHandler(nil, repo, nil, nil, runner, &config.Config{})

	router := mux.NewRouter()
	router.HandleFunc("/api/mixes/{id}/events", handler.MixEventsHandler).Methods(http.MethodGet)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/mixes/" + mixID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestMixEventsDeliversTransitionDuringStatusRead(t *testing.T) {
	broker := mixjob.NewBroker()
	repo := &eventsMixRepo{
		mix:    &model.Mix{ID: "mix-1", Status: model.MixProcessing},
		broker: broker,
		onGet:  &mixjob.StatusEvent{MixID: "mix-1", Status: model.MixCompleted},
	}
	conn := dialMixEvents(t, repo, broker, "mix-1")

	var ev mixjob.StatusEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, model.MixProcessing, ev.Status, "current status is sent first")

	require.NoError(t, conn.ReadJSON(&ev),
		"a transition published while the current status was being read must still reach the client")
	assert.Equal(t, model.MixCompleted, ev.Status)
}

func TestMixEventsClosesAfterTerminalStatus(t *testing.T) {
	broker := mixjob.NewBroker()
	repo := &eventsMixRepo{
		mix:    &model.Mix{ID: "mix-2", Status: model.MixCompleted},
		broker: broker,
	}
	conn := dialMixEvents(t, repo, broker, "mix-2")

	var ev mixjob.StatusEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, model.MixCompleted, ev.Status)

	assert.Error(t, conn.ReadJSON(&ev), "connection closes after a terminal status")
}
