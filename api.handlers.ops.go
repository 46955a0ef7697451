package main

import (
	"errors"
	"expvar"
	"net/http"
	"net/http/pprof"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func (api *APIHandler) OpsHandlerWrapper(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

func (api *APIHandler) GetCPUProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pprof.Profile(w, r)
}

func (api *APIHandler) GetTraceProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pprof.Trace(w, r)
}

func (api *APIHandler) GetSymbol(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pprof.Symbol(w, r)
}

func (api *APIHandler) GetCmdLine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pprof.Cmdline(w, r)
}

// NotFound answers requests made on routes which do not exist.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		if requestID == "" && api.idsHandler != nil {
			requestID = api.idsHandler.Generate(RequestIDPrefix)
		}
		api.respond(w, r, http.StatusNotFound, NotFoundResponse{
			RequestID: requestID,
			Message:   "route does not exist",
			Path:      r.Method + " " + r.URL.Path,
		})
	})
}

// Maintenance enables or disables the maintenance mode of the service.
// Enable the maintenance mode : /ops/maintenance?status=enable&msg=message-to-be-displayed-to-users
// Disable the maintenance mode: /ops/maintenance?status=disable
// Any other call shows the current mode.
func (api *APIHandler) Maintenance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	q := r.URL.Query()
	var response map[string]interface{}

	switch q.Get("status") {
	case "enable":
		msg, started := q.Get("msg"), api.clock.Now().UTC()
		api.mode.mu.Lock()
		api.mode.message = msg
		api.mode.started = started
		api.mode.mu.Unlock()
		api.mode.enabled.Store(true)
		response = map[string]interface{}{
			"requestid":           requestID,
			"maintenance.started": started.Format(time.RFC1123),
			"maintenance.message": msg,
			"message":             "Maintenance mode enabled successfully.",
		}
		api.GetLoggerFromContext(r.Context()).Info("maintenance mode enabled", zap.String("maintenance.message", msg))

	case "disable":
		api.mode.enabled.Store(false)
		api.mode.mu.Lock()
		api.mode.started = time.Time{}
		api.mode.message = ""
		api.mode.mu.Unlock()
		response = map[string]interface{}{
			"requestid": requestID,
			"message":   "Maintenance mode disabled successfully.",
		}
		api.GetLoggerFromContext(r.Context()).Info("maintenance mode disabled")

	default:
		api.mode.mu.RLock()
		response = map[string]interface{}{
			"requestid": requestID,
			"enabled":   api.mode.enabled.Load(),
			"message":   api.mode.message,
		}
		api.mode.mu.RUnlock()
	}

	api.respond(w, r, http.StatusOK, response)
}

// export goroutines to be used by expvar handler.
var goroutines = expvar.NewInt("goroutines")

// GetMemStats returns memory statistics with number of goroutines in json.
func GetMemStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	goroutines.Set(int64(runtime.NumGoroutine()))
	expvar.Handler().ServeHTTP(w, r)
}

// RunGC forces the run of the garbage collector asynchronously.
func (api *APIHandler) RunGC(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	go runtime.GC()
	api.respond(w, r, http.StatusOK, map[string]string{"called": "go runtime.GC()"})
}

// FreeOSMemory forces the garbage collector to and tries to returns the memory
// back to the operating system in an asynchronous fashion.
func (api *APIHandler) FreeOSMemory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	go debug.FreeOSMemory()
	api.respond(w, r, http.StatusOK, map[string]string{"called": "go debug.FreeOSMemory()"})
}

// GetStatistics provides useful details about the application to the internal ops users.
// The ops request which triggered it is not yet counted in the status map.
func (api *APIHandler) GetStatistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.stats.mu.RLock()
	status := make(map[int]uint64, len(api.stats.status))
	for code, count := range api.stats.status {
		status[code] = count
	}
	api.stats.mu.RUnlock()

	api.respond(w, r, http.StatusOK, map[string]interface{}{
		"requestid":     GetValueFromContext(r.Context(), RequestIDContextKey),
		"app.version":   api.stats.version,
		"app.container": api.stats.container,
		"app.platform":  api.stats.platform,
		"go.version":    api.stats.runtime,
		"called":        atomic.LoadUint64(&api.stats.called),
		"started":       api.stats.started.Format(time.RFC1123),
		"uptime":        Uptime(api.clock, api.stats.started).String(),
		"maintenance":   api.mode.enabled.Load(),
		"status":        status,
	})
}

// GetConfigs serves current in-use configurations. Secrets are not exported.
func (api *APIHandler) GetConfigs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.respond(w, r, http.StatusOK, map[string]interface{}{"configs": api.config})
}

// GetMirroredBooks serves the content of the local books mirror.
func (api *APIHandler) GetMirroredBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if api.mirror == nil {
		api.fail(w, r, http.StatusServiceUnavailable, "books mirror is disabled", EmptyData)
		return
	}
	books, err := api.mirror.GetAll(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to read books mirror", EmptyData, zap.Error(err))
		return
	}
	api.respond(w, r, http.StatusOK, books)
}

// GetMirroredBook serves the local copy of a single book.
func (api *APIHandler) GetMirroredBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if api.mirror == nil {
		api.fail(w, r, http.StatusServiceUnavailable, "books mirror is disabled", EmptyData)
		return
	}
	id := ps.ByName("id")
	book, err := api.mirror.GetOne(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		api.fail(w, r, http.StatusNotFound, "Book not found in mirror", EmptyData, zap.String("book.id", id))
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to read books mirror", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	api.respond(w, r, http.StatusOK, book)
}
