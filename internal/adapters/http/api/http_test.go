package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/ladder/internal/adapters/http/api"
	"github.com/okian/ladder/internal/adapters/mq/queue"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/pipeline"
	"github.com/okian/ladder/internal/domain/ranking"
	"github.com/okian/ladder/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records the selections it renders.
type mockDependencies struct {
	lastSel   pipeline.Selection
	tabs      []types.Tab
	subGroups map[int][]string
	reloadErr error
	reloads   int
	health    types.Health
}

func (m *mockDependencies) View(ctx context.Context, sel pipeline.Selection) types.View {
	m.lastSel = sel
	return types.View{
		Rows:      []types.Row{{Rank: 1, Nickname: "alice"}},
		Sort:      sel.Sort.String(),
		Selection: sel.Echo(),
	}
}

func (m *mockDependencies) Tabs(ctx context.Context) []types.Tab {
	return m.tabs
}

func (m *mockDependencies) SubGroups(ctx context.Context, tab int) []string {
	if jobs, ok := m.subGroups[tab]; ok {
		return jobs
	}
	return []string{}
}

func (m *mockDependencies) Reload(ctx context.Context, reason string) (model.LoadRequest, error) {
	if m.reloadErr != nil {
		return model.LoadRequest{}, m.reloadErr
	}
	m.reloads++
	return model.LoadRequest{ID: fmt.Sprintf("load-%d", m.reloads), Generation: uint64(m.reloads + 1), Reason: reason}, nil
}

func (m *mockDependencies) Health(ctx context.Context) types.Health {
	return m.health
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{health: types.Health{Status: "ok"}})

		for _, path := range []string{"/healthz", "/metrics", "/stats", "/view", "/tabs", "/subgroups"} {
			Convey("Then GET "+path+" should be served", func() {
				So(do(mux, http.MethodGet, path).Code, ShouldEqual, http.StatusOK)
			})
		}

		Convey("Then POST /reload should be accepted", func() {
			So(do(mux, http.MethodPost, "/reload").Code, ShouldEqual, http.StatusAccepted)
		})
	})
}

func TestViewHandler(t *testing.T) {
	Convey("Given a view handler", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When requesting the default view", func() {
			w := do(mux, http.MethodGet, "/view")

			Convey("Then it should render the zero selection", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(deps.lastSel, ShouldResemble, pipeline.Selection{})

				var view types.View
				So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
				So(view.Rows[0].Nickname, ShouldEqual, "alice")
				So(view.Sort, ShouldEqual, "none")
			})
		})

		Convey("When every parameter is given", func() {
			w := do(mux, http.MethodGet, "/view?q=%E5%8A%8D&tab=2&job=+Mage+&sort=level:asc")

			Convey("Then the selection should carry them", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSel.Query, ShouldEqual, "劍")
				So(deps.lastSel.Tab, ShouldEqual, 2)
				So(deps.lastSel.SubGroup, ShouldEqual, "Mage")
				So(deps.lastSel.Sort, ShouldResemble, ranking.Spec{Metric: ranking.Level, Direction: ranking.Asc})
			})
		})

		Convey("When the tab is not a number", func() {
			w := do(mux, http.MethodGet, "/view?tab=abc")

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)

				var resp map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "bad_request")
				So(resp["message"], ShouldContainSubstring, "invalid tab")
			})
		})

		Convey("When the tab is negative", func() {
			So(do(mux, http.MethodGet, "/view?tab=-1").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the sort is unknown", func() {
			So(do(mux, http.MethodGet, "/view?sort=height:desc").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is not GET", func() {
			So(do(mux, http.MethodPost, "/view").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given a catalog handler", t, func() {
		deps := &mockDependencies{
			tabs:      []types.Tab{{ID: 0, Label: "All"}, {ID: 1, Label: "Swordsman"}},
			subGroups: map[int][]string{1: {"Berserker", "Knight"}},
		}
		mux := newMux(deps)

		Convey("When listing tabs", func() {
			w := do(mux, http.MethodGet, "/tabs")

			Convey("Then they should be returned in order", func() {
				var tabs []types.Tab
				So(json.Unmarshal(w.Body.Bytes(), &tabs), ShouldBeNil)
				So(tabs, ShouldResemble, deps.tabs)
			})
		})

		Convey("When listing the jobs of a tab", func() {
			w := do(mux, http.MethodGet, "/subgroups?tab=1")

			Convey("Then they should be returned", func() {
				var jobs []string
				So(json.Unmarshal(w.Body.Bytes(), &jobs), ShouldBeNil)
				So(jobs, ShouldResemble, []string{"Berserker", "Knight"})
			})
		})

		Convey("When the tab has no jobs", func() {
			w := do(mux, http.MethodGet, "/subgroups?tab=7")

			Convey("Then an empty list should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When the tab is invalid", func() {
			So(do(mux, http.MethodGet, "/subgroups?tab=x").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestReloadHandler(t *testing.T) {
	Convey("Given a reload handler", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When a reload is accepted", func() {
			w := do(mux, http.MethodPost, "/reload?reason=cron")

			Convey("Then it should return the queued load", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "accepted")
				So(resp["id"], ShouldEqual, "load-1")
				So(resp["generation"], ShouldEqual, float64(2))
			})
		})

		Convey("When the queue is full", func() {
			deps.reloadErr = fmt.Errorf("reload already pending: %w", queue.ErrFull)
			w := do(mux, http.MethodPost, "/reload")

			Convey("Then it should return too many requests", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, "backpressure")
			})
		})

		Convey("When the service cannot take reloads", func() {
			deps.reloadErr = fmt.Errorf("service not started")
			w := do(mux, http.MethodPost, "/reload")

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the method is GET", func() {
			So(do(mux, http.MethodGet, "/reload").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a degraded service", t, func() {
		mux := newMux(&mockDependencies{health: types.Health{Status: "degraded", LastError: "upstream 502"}})

		Convey("When checking health", func() {
			w := do(mux, http.MethodGet, "/healthz")

			Convey("Then it should still answer 200 with the detail", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var h types.Health
				So(json.Unmarshal(w.Body.Bytes(), &h), ShouldBeNil)
				So(h.Status, ShouldEqual, "degraded")
				So(h.LastError, ShouldEqual, "upstream 502")
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/stats")

			Convey("Then the provider's map should be returned", func() {
				var stats map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When scraping metrics after a request", func() {
			do(mux, http.MethodGet, "/healthz")
			w := do(mux, http.MethodGet, "/metrics")

			Convey("Then the HTTP series should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
			})
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := fmt.Errorf("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause should match", func() {
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, api.ErrBackpressure), ShouldBeFalse)
		})

		Convey("Then a bare kind should print without a cause", func() {
			So(api.WrapKind("api.op", api.ErrBackpressure, nil).Error(), ShouldEqual, "api.op: backpressure")
		})
	})
}
