// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

const (
	// maxReadBytes is the number of bytes to read
	// from a request body. It's intended to be used
	// with an io.LimitReader
	maxReadBytes = 1 * 1024 * 1024
)

var (
	errMissingRequiredJson = errors.New("missing required JSON field(s)")

	routeHistogram = kitprom.NewHistogramFrom(stdprom.HistogramOpts{
		Name: "http_response_duration_seconds",
		Help: "Histogram representing the http response durations",
	}, []string{"route"})

	internalServerErrors = kitprom.NewCounterFrom(stdprom.CounterOpts{
		Name: "http_errors",
		Help: "Count of how many 5xx errors we send out",
	}, []string{})
)

// read consumes an io.Reader (wrapping with io.LimitReader)
// and returns either the resulting bytes or a non-nil error.
func read(r io.Reader) ([]byte, error) {
	r = io.LimitReader(r, maxReadBytes)
	return ioutil.ReadAll(r)
}

// getRequestID extracts X-Request-Id from the http request, which
// is used in tracing requests.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}

// getCardNumber grabs the cardNumber path variable from the request.
func getCardNumber(r *http.Request) string {
	return mux.Vars(r)["cardNumber"]
}

// encodeError JSON encodes the supplied error
//
// The HTTP status of "400 Bad Request" is written to the
// response.
func encodeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func internalError(logger log.Logger, w http.ResponseWriter, err error) {
	internalServerErrors.Add(1)
	logger.Log("http", err)
	w.WriteHeader(http.StatusInternalServerError)
}

func addPingRoute(logger log.Logger, r *mux.Router) {
	r.Methods("GET").Path("/ping").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := getRequestID(r); requestID != "" {
			logger.Log("ping", fmt.Sprintf("requestId=%s", requestID))
		}

		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("PONG"))
	})
}

// wrapResponseWriter creates a new atmResponseWriter with sane values.
//
// Use the http.ResponseWriter as you normally would. When the status code is
// written then a log line and sample (metric) are recorded.
//
// method should be a unique name, i.e. http handler function name
func wrapResponseWriter(logger log.Logger, w http.ResponseWriter, r *http.Request, method string) (http.ResponseWriter, error) {
	ww := &atmResponseWriter{
		ResponseWriter: w,
		start:          time.Now(),
		metric:         routeHistogram.With("route", method),
		method:         method,
		requestID:      getRequestID(r),
		log:            logger,
	}
	return ww, nil
}

// atmResponseWriter embeds an http.ResponseWriter but also has knowledge
// of if headers have been written to emit a log line (with x-request-id) and
// record metrics.
//
// Use wrapResponseWriter to create a new instance, don't construct one yourself.
//
// This is not a thread-safe struct!
type atmResponseWriter struct {
	http.ResponseWriter

	start  time.Time
	method string
	metric metrics.Histogram

	headersWritten bool // has .WriteHeader been called yet?
	requestID      string

	log log.Logger
}

// WriteHeader sends an HTTP response header with the provided status code and
// records response duration metrics.
func (w *atmResponseWriter) WriteHeader(code int) {
	if w.headersWritten {
		return
	}
	w.headersWritten = true
	defer w.ResponseWriter.WriteHeader(code)

	diff := time.Since(w.start)

	if w.metric != nil {
		w.metric.Observe(diff.Seconds())
	}

	if w.ResponseWriter.Header().Get("Content-Type") == "" {
		// skip Go's content sniff here to speed up rendering
		w.ResponseWriter.Header().Set("Content-Type", "text/plain")
	}

	if w.method != "" && w.requestID != "" {
		line := fmt.Sprintf("status=%d, took=%s, requestId=%s", code, diff, w.requestID)
		w.log.Log(w.method, line)
	}
}
