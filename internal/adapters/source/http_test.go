package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewHTTPSource(t *testing.T) {
	Convey("Given an endpoint and a sheet key", t, func() {
		Convey("When the endpoint has no sheet parameter", func() {
			s, err := NewHTTPSource("https://example.test/exec?x=1", "tw_data")

			Convey("Then the sheet key is appended", func() {
				So(err, ShouldBeNil)
				So(s.URL(), ShouldEqual, "https://example.test/exec?sheet=tw_data&x=1")
				So(s.Kind(), ShouldEqual, KindHTTP)
			})
		})

		Convey("When the endpoint already names a sheet", func() {
			s, err := NewHTTPSource("https://example.test/exec?sheet=kr_data", "tw_data")

			Convey("Then it is left alone", func() {
				So(err, ShouldBeNil)
				So(s.URL(), ShouldEqual, "https://example.test/exec?sheet=kr_data")
			})
		})

		Convey("When the endpoint is not a URL", func() {
			_, err := NewHTTPSource("://bad", "tw_data")

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestHTTPSource_Fetch(t *testing.T) {
	Convey("Given an upstream sheet endpoint", t, func() {
		var status int
		var body string
		var gotSheet string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSheet = r.URL.Query().Get("sheet")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		s, err := NewHTTPSource(srv.URL, "tw_data", WithHTTPClient(srv.Client()), WithTimeout(time.Second))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When it returns the record array", func() {
			status = http.StatusOK
			body = `{"tw_data":[{"nickname":"Kap","exp":9007199254740993,"daily_exp_diff":null},"junk",{"level":"12"}],"other":1}`
			records, err := s.Fetch(ctx)

			Convey("Then objects are decoded with exact numbers", func() {
				So(err, ShouldBeNil)
				So(gotSheet, ShouldEqual, "tw_data")
				So(len(records), ShouldEqual, 2)
				So(records[0]["nickname"], ShouldEqual, "Kap")
				So(records[0]["exp"], ShouldEqual, json.Number("9007199254740993"))
				So(records[0]["daily_exp_diff"], ShouldBeNil)
				So(records[1]["level"], ShouldEqual, "12")
			})
		})

		Convey("When it answers with a non-2xx status", func() {
			status = http.StatusBadGateway
			body = `{"tw_data":[]}`
			_, err := s.Fetch(ctx)

			Convey("Then the failure is an upstream status error", func() {
				So(errors.Is(err, ErrUpstreamStatus), ShouldBeTrue)
			})
		})

		Convey("When the sheet member is not an array", func() {
			status = http.StatusOK
			body = `{"tw_data":{"nickname":"Kap"}}`
			_, err := s.Fetch(ctx)

			Convey("Then the failure is a shape error", func() {
				So(errors.Is(err, ErrShape), ShouldBeTrue)
			})
		})

		Convey("When the sheet member is missing or the body is not JSON", func() {
			status = http.StatusOK
			for _, b := range []string{`{"kr_data":[]}`, `<html>`, `[]`} {
				body = b
				_, err := s.Fetch(ctx)
				So(errors.Is(err, ErrShape), ShouldBeTrue)
			}
		})
	})

	Convey("Given an unreachable upstream", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		s, err := NewHTTPSource(url, "tw_data", WithTimeout(time.Second))
		So(err, ShouldBeNil)

		Convey("When fetching", func() {
			_, err := s.Fetch(context.Background())

			Convey("Then the failure is a transport error", func() {
				So(errors.Is(err, ErrTransport), ShouldBeTrue)
				So(outcome(err), ShouldEqual, "transport")
			})
		})
	})
}
