package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"modelmove/logger"
	. "modelmove/server/errors"
	"modelmove/server/migrations/description"
	"modelmove/server/migrations/migrations"
	"modelmove/server/migrations/move"
	"modelmove/server/migrations/neutered"
	"modelmove/server/migrations/operations"
	"modelmove/server/pg"
	"modelmove/server/state"
	"modelmove/utils"
)

//ModelMove server description
type ModelMoveServer struct {
	addr, port, root string
	s                *http.Server
	syncer           state.Syncer
}

func New(host, port, urlPrefix string, syncer state.Syncer) *ModelMoveServer {
	return &ModelMoveServer{addr: host, port: port, root: urlPrefix, syncer: syncer}
}

func (ms *ModelMoveServer) SetAddr(a string) {
	ms.addr = a
}

func (ms *ModelMoveServer) SetPort(p string) {
	ms.port = p
}

func (ms *ModelMoveServer) SetRoot(r string) {
	ms.root = r
}

type kindDescription struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Doc        string `json:"doc"`
	Neuterable bool   `json:"neuterable"`
}

func describeKinds(kinds []*operations.Kind) []interface{} {
	descriptions := make([]interface{}, 0, len(kinds))
	for _, kind := range kinds {
		_, neuterable := neutered.Lookup(kind.Name)
		descriptions = append(descriptions, kindDescription{
			Name:       kind.Name,
			Type:       kind.QualifiedName(),
			Doc:        kind.Doc,
			Neuterable: neuterable && kind.Namespace == "",
		})
	}
	return descriptions
}

func (ms *ModelMoveServer) Handler() http.Handler {
	router := httprouter.New()
	migrationFactory := migrations.NewMigrationFactory(nil)

	router.GET(ms.root+"/operations", CreateJsonAction(func(r *http.Request, sink *JsonSink, p httprouter.Params) {
		kinds := append(operations.Catalog(), move.Kinds()...)
		sink.pushList(describeKinds(kinds), len(kinds))
	}))

	router.GET(ms.root+"/operations/neutered", CreateJsonAction(func(r *http.Request, sink *JsonSink, p httprouter.Params) {
		kinds := neutered.Kinds()
		sink.pushList(describeKinds(kinds), len(kinds))
	}))

	router.GET(ms.root+"/state", CreateJsonAction(func(r *http.Request, sink *JsonSink, p httprouter.Params) {
		if projectState, err := ms.syncer.Get(r.Context()); err != nil {
			sink.pushError(err)
		} else {
			sink.pushObj(projectState)
		}
	}))

	router.POST(ms.root+"/sqlmigrate", CreateJsonAction(func(r *http.Request, sink *JsonSink, p httprouter.Params) {
		if r.Body == nil {
			sink.pushError(NewValidationError(ErrBadRequest, "migration description expected", nil))
			return
		}
		migrationDescription, err := new(description.MigrationDescription).Unmarshal(r.Body)
		if err != nil {
			if _, ok := err.(*description.MigrationMarshallingError); ok {
				err = NewValidationError(ErrBadRequest, err.Error(), nil)
			}
			sink.pushError(err)
			return
		}
		migration, err := migrationFactory.Factory(migrationDescription)
		if err != nil {
			sink.pushError(err)
			return
		}
		projectState, err := ms.syncer.Get(r.Context())
		if err != nil {
			sink.pushError(err)
			return
		}

		collector := pg.NewCollector()
		if r.URL.Query().Get("backwards") == "true" {
			_, err = migration.Unapply(projectState, collector)
		} else {
			_, err = migration.Apply(projectState, collector)
		}
		if err != nil {
			sink.pushError(err)
			return
		}
		sink.pushObj(map[string]interface{}{"statements": collector.Statements().Codes()})
	}))

	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetContext("Request", map[string]interface{}{"method": r.Method, "url": r.URL.String()})
		})
		sentry.CaptureException(err)
		returnError(w, err)
	}
	return router
}

func (ms *ModelMoveServer) Setup(config *utils.AppConfig) *http.Server {
	if config != nil && config.UrlPrefix != "" && ms.root == "" {
		ms.root = config.UrlPrefix
	}
	ms.s = &http.Server{
		Addr:           ms.addr + ":" + ms.port,
		Handler:        ms.Handler(),
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	logger.Info("Serving on '%s' under '%s'", ms.s.Addr, ms.root)
	return ms.s
}

func CreateJsonAction(f func(*http.Request, *JsonSink, httprouter.Params)) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, p httprouter.Params) {
		sink, _ := asJsonSink(w)
		f(req, sink, p)
	}
}

//Returns an error to HTTP response in JSON format.
//If the error object accepted is of ServerError type so HTTP status and code are taken from the error object.
//DDL errors are reported as bad requests. Otherwise the status is http.StatusInternalServerError.
func returnError(w http.ResponseWriter, e error) {
	w.Header().Set("Content-Type", "application/json")
	responseData := map[string]interface{}{"status": "FAIL"}
	var serverError *ServerError
	var ddlError *pg.DDLError
	switch {
	case errors.As(e, &serverError):
		w.WriteHeader(serverError.Status)
		responseData["error"] = serverError.Serialize()
	case errors.As(e, &ddlError):
		w.WriteHeader(http.StatusBadRequest)
		responseData["error"] = json.RawMessage(ddlError.Json())
	default:
		w.WriteHeader(http.StatusInternalServerError)
		responseData["error"] = e.Error()
	}
	//encoded
	encodedData, _ := json.Marshal(responseData)
	w.Write(encodedData)
}

//The JSON object sink into the HTTP response.
type JsonSink struct {
	rw     http.ResponseWriter
	Status string
}

//Converts http.ResponseWriter into JsonSink.
func asJsonSink(w http.ResponseWriter) (*JsonSink, error) {
	return &JsonSink{w, "OK"}, nil
}

//Push an error into JsonSink.
func (js *JsonSink) pushError(e error) {
	returnError(js.rw, e)
}

//Push an JSON object into JsonSink
func (js *JsonSink) pushObj(object interface{}) {
	responseData := map[string]interface{}{"status": js.Status}
	if object != nil {
		responseData["data"] = object
	}
	if encodedData, err := json.Marshal(responseData); err != nil {
		returnError(js.rw, err)
	} else {
		js.rw.Header().Set("Content-Type", "application/json")
		js.rw.WriteHeader(http.StatusOK)
		js.rw.Write(encodedData)
	}
}

func (js *JsonSink) pushList(objects []interface{}, total int) {
	responseData := map[string]interface{}{"status": js.Status}
	if objects == nil {
		objects = make([]interface{}, 0)
	}
	responseData["data"] = objects
	responseData["total_count"] = total

	if encodedData, err := json.Marshal(responseData); err != nil {
		returnError(js.rw, err)
	} else {
		js.rw.Header().Set("Content-Type", "application/json")
		js.rw.WriteHeader(http.StatusOK)
		js.rw.Write(encodedData)
	}
}
