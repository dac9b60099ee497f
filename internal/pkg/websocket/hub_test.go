package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luct/reporting/internal/app/models"
)

func ictReport(id int64) *models.ReportDetails {
	return &models.ReportDetails{
		LectureReport: models.LectureReport{ID: id, ClassID: 5, LecturerID: 2},
		CourseFaculty: "Faculty of ICT (FICT)",
	}
}

func TestBroadcastFiltersByScope(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	owner := newClient(hub, nil, models.Actor{ID: 2, Role: models.RoleLecturer}, models.ReportScope{Kind: models.ScopeOwn, LecturerID: 2}, zerolog.Nop())
	other := newClient(hub, nil, models.Actor{ID: 9, Role: models.RoleLecturer}, models.ReportScope{Kind: models.ScopeOwn, LecturerID: 9}, zerolog.Nop())
	business := newClient(hub, nil, models.Actor{ID: 3, Role: models.RolePrincipalLecturer}, models.ReportScope{Kind: models.ScopeFaculty, Faculty: "Business"}, zerolog.Nop())
	hub.registerClient(owner)
	hub.registerClient(other)
	hub.registerClient(business)

	listener := make(chan models.ReportEvent, 1)
	hub.AddListener(listener)

	hub.broadcastEvent(models.ReportEvent{Type: models.EventReportSubmitted, ReportID: 11, ActorID: 2, Report: ictReport(11)})

	require.Len(t, owner.send, 1)
	assert.Len(t, other.send, 0)
	assert.Len(t, business.send, 0)
	assert.Equal(t, int64(11), (<-listener).ReportID)

	var got models.ReportEvent
	require.NoError(t, json.Unmarshal(<-owner.send, &got))
	assert.Equal(t, models.EventReportSubmitted, got.Type)
	assert.Equal(t, int64(11), got.ReportID)

	hub.RemoveListener(listener)
	hub.unregisterClient(other)
	assert.Equal(t, 2, hub.ClientsCount())
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := newClient(hub, nil, models.Actor{ID: 4, Role: models.RoleProgramLeader}, models.AllReports(), zerolog.Nop())
	hub.registerClient(slow)

	for i := 0; i <= sendBuffer; i++ {
		hub.broadcastEvent(models.ReportEvent{Type: models.EventRatingAdded, ReportID: int64(i), Report: ictReport(int64(i))})
	}
	assert.Equal(t, 0, hub.ClientsCount())
}

func TestHandlerStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	scopes := scopeFunc(func(_ context.Context, a models.Actor) (models.ReportScope, error) {
		return models.ReportScope{Kind: models.ScopeOwn, LecturerID: a.ID}, nil
	})
	actor := func(c *gin.Context) (models.Actor, bool) {
		return models.Actor{ID: 2, Role: models.RoleLecturer}, true
	}

	r := gin.New()
	handler := NewHandler(hub, scopes, actor, zerolog.Nop())
	r.GET("/ws", handler.HandleConnection)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return handler.ConnectedClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(models.ReportEvent{Type: models.EventReportSubmitted, ReportID: 99, Report: &models.ReportDetails{LectureReport: models.LectureReport{ID: 98, LecturerID: 7}}})
	hub.Publish(models.ReportEvent{Type: models.EventFeedbackAdded, ReportID: 11, Report: ictReport(11)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.ReportEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(11), got.ReportID)
	assert.Equal(t, models.EventFeedbackAdded, got.Type)
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "any when unset", origin: "https://evil.example", want: true},
		{name: "listed", allowed: []string{"https://reports.luct.ac.ls/"}, origin: "https://Reports.luct.ac.ls", want: true},
		{name: "unlisted", allowed: []string{"https://reports.luct.ac.ls"}, origin: "https://evil.example", want: false},
		{name: "no origin header", allowed: []string{"https://reports.luct.ac.ls"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewHub(zerolog.Nop()), nil, nil, zerolog.Nop()).WithAllowedOrigins(tt.allowed)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.upgrader.CheckOrigin(req))
		})
	}
}

type scopeFunc func(ctx context.Context, actor models.Actor) (models.ReportScope, error)

func (f scopeFunc) ReportScope(ctx context.Context, actor models.Actor) (models.ReportScope, error) {
	return f(ctx, actor)
}
