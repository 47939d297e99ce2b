package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/storage"
	"github.com/Comcast/dtable/tools"
	"github.com/Comcast/dtable/util"

	"golang.org/x/net/netutil"
)

// MaxBody limits request bodies.
var MaxBody int64 = 1 << 20

func complain(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	js, _ := json.Marshal(map[string]string{"error": err.Error()})
	w.Write(append(js, '\n'))
}

func reply(w http.ResponseWriter, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		complain(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(append(js, '\n')); err != nil {
		util.Warnf("Service Write(): %v", err)
	}
}

func status(err error) int {
	var nf *NotFound
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, storage.BadName):
		return http.StatusBadRequest
	case errors.Is(err, NotStored):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Handler returns the HTTP API:
//
//	POST   /eval/NAME     body is a JSON message; replies with a Result
//	GET    /tables        lists tables
//	GET    /tables/NAME   gets a table's info and source
//	PUT    /tables/NAME   body is a YAML or JSON table source
//	DELETE /tables/NAME   removes a table added with PUT
func (s *Service) Handler(ctx context.Context) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/eval/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			complain(w, errors.New("POST only"), http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/eval/")
		js, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxBody))
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		var msg core.Bindings
		if err = json.Unmarshal(js, &msg); err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		result, err := s.Eval(r.Context(), name, msg)
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, result)
	})

	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			complain(w, errors.New("GET only"), http.StatusMethodNotAllowed)
			return
		}
		reply(w, s.Tables.List())
	})

	mux.HandleFunc("/tables/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/tables/")

		switch r.Method {
		case http.MethodGet:
			op := GetOp{Table: name}
			if err := op.Do(r.Context(), s); err != nil {
				complain(w, err, status(err))
				return
			}
			reply(w, &op)

		case http.MethodPut:
			bs, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxBody))
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			src, err := tools.ParseTableSource(bs)
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			src.Name = name
			info, err := s.Tables.Put(ctx, src)
			if err != nil {
				code := status(err)
				if code == http.StatusInternalServerError {
					// Most likely the table didn't compile.
					code = http.StatusUnprocessableEntity
				}
				complain(w, err, code)
				return
			}
			reply(w, info)

		case http.MethodDelete:
			if err := s.Tables.Rem(ctx, name); err != nil {
				complain(w, err, status(err))
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			complain(w, errors.New("unsupported method"), http.StatusMethodNotAllowed)
		}
	})

	return mux
}

// Listen makes a listener that accepts at most maxConns connections
// at a time (if maxConns is positive).
func Listen(addr string, maxConns int) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if 0 < maxConns {
		l = netutil.LimitListener(l, maxConns)
	}
	return l, nil
}

// Serve runs the HTTP server until the context is done.
func (s *Service) Serve(ctx context.Context, l net.Listener, h http.Handler) error {
	log.Printf("Service.Serve starting on %s", l.Addr())

	srv := &http.Server{
		Handler: h,
	}

	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			util.Warnf("Service.Serve Close(): %v", err)
		}
	}()

	if err := srv.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return nil
}
