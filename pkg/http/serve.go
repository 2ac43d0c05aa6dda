package xhttp

import (
	"net"
	"os"
	"os/signal"
	"reflect"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kaiteddy/garage-comms/pkg/logger"
)

var DefaultServerOption = ServerOption{
	Handler: func(ctx *RequestCtx) {
		ctx.Error(StatusText(StatusNotFound), StatusNotFound)
	},
	IdleTimeout:           time.Second * 10,
	MaxIdleWorkerDuration: time.Minute * 1,
	TCPKeepalivePeriod:    time.Minute * 120,
	MaxRequestBodySize:    4 * 1024 * 1024, // 4MB
	RequestTimeout:        time.Millisecond * 5000,
	ReadBufferSize:        1024 * 4, // also, max header size
	WriteBufferSize:       1024 * 4,
	ReadTimeout:           time.Millisecond * 2500,
	WriteTimeout:          time.Millisecond * 2500,
	Concurrency:           30_000,
	MaxConnsPerIP:         10_000,
	MaxRequestsPerConn:    0, // unlimited
	ErrorHandler: func(ctx *RequestCtx, err error) {
		ctx.Logger().Printf("[xhttp] error: %s", err)
	},
	TCPKeepalive:                 true,
	DisablePreParseMultipartForm: true,
	LogAllErrors:                 true,
	NoDefaultServerHeader:        true,
	NoDefaultDate:                true,
	NoDefaultContentType:         true,
	CloseOnShutdown:              true,
	Logger:                       logger.GetLogger(),
}

type RequestHeader = fasthttp.RequestHeader
type ResponseHeader = fasthttp.ResponseHeader
type Server = fasthttp.Server

type ServerOption struct {
	Handler RequestHandler

	// idle connections held open too long exhaust file descriptors
	IdleTimeout           time.Duration
	MaxIdleWorkerDuration time.Duration
	TCPKeepalivePeriod    time.Duration
	MaxRequestBodySize    int
	RequestTimeout        time.Duration
	ReadBufferSize        int
	WriteBufferSize       int
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	Concurrency           int
	MaxConnsPerIP         int
	MaxRequestsPerConn    int

	ErrorHandler                 func(ctx *RequestCtx, err error)
	Name                         string
	DisableKeepalive             bool
	TCPKeepalive                 bool
	ReduceMemoryUsage            bool
	DisablePreParseMultipartForm bool
	LogAllErrors                 bool
	NoDefaultServerHeader        bool
	NoDefaultDate                bool
	NoDefaultContentType         bool
	CloseOnShutdown              bool
	ConnState                    func(net.Conn, fasthttp.ConnState)
	Logger                       logger.Logger
}

type Engine struct {
	*Router
	*Server
	option ServerOption
	middle []MiddlewareFunc
}

func newServer(options ServerOption) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:                      options.Handler,
		ErrorHandler:                 options.ErrorHandler,
		Name:                         options.Name,
		Concurrency:                  options.Concurrency,
		ReadBufferSize:               options.ReadBufferSize,
		WriteBufferSize:              options.WriteBufferSize,
		ReadTimeout:                  options.ReadTimeout,
		WriteTimeout:                 options.WriteTimeout,
		IdleTimeout:                  options.IdleTimeout,
		MaxConnsPerIP:                options.MaxConnsPerIP,
		MaxRequestsPerConn:           options.MaxRequestsPerConn,
		MaxIdleWorkerDuration:        options.MaxIdleWorkerDuration,
		TCPKeepalivePeriod:           options.TCPKeepalivePeriod,
		MaxRequestBodySize:           options.MaxRequestBodySize,
		DisableKeepalive:             options.DisableKeepalive,
		TCPKeepalive:                 options.TCPKeepalive,
		ReduceMemoryUsage:            options.ReduceMemoryUsage,
		DisablePreParseMultipartForm: options.DisablePreParseMultipartForm,
		LogAllErrors:                 options.LogAllErrors,
		NoDefaultServerHeader:        options.NoDefaultServerHeader,
		NoDefaultDate:                options.NoDefaultDate,
		NoDefaultContentType:         options.NoDefaultContentType,
		CloseOnShutdown:              options.CloseOnShutdown,
		ConnState:                    options.ConnState,
		Logger:                       options.Logger,
	}
}

func NewServer(options ServerOption) *Engine {
	return &Engine{
		Server: newServer(options),
		Router: NewRouter(),
		option: options,
	}
}

func CreateServer() *Engine {
	s := NewServer(DefaultServerOption)
	s.Router = CreateDefaultRouter()
	s.Server.Logger = logger.GetLogger()
	return s
}

func (e *Engine) ListenAndServe(addr string) error {
	if err := e.DoRouting(); err != nil {
		return err
	}
	e.Server.Logger.Printf("[xhttp] server is listening on %s", addr)
	return e.Server.ListenAndServe(addr)
}

func (e *Engine) DoRouting() error {
	for method, route := range e.Router.List() {
		for _, r := range route {
			e.Server.Logger.Printf("[xhttp] method: %s, path: %s", method, r)
		}
	}
	e.Server.Handler = e.Router.Handler
	// middlewares are applied in reverse so the first registered runs first
	slices.Reverse(e.middle)
	for i, m := range e.middle {
		e.Server.Handler = m(e.Server.Handler)
		e.Server.Logger.Printf("[xhttp] middleware %d registered - %s", i+1,
			runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	return nil
}

func (e *Engine) CloseOnSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig
		e.Shutdown()
	}()
}

// Use adds middleware to the chain which is run for every request.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Shutdown gracefully shuts down the server without interrupting any active
// connections.
func (e *Engine) Shutdown() {
	e.Server.Logger.Printf("[xhttp] server is shutting down, process id: %d", os.Getpid())
	if err := e.Server.Shutdown(); err != nil {
		e.Server.Logger.Printf("[xhttp] error while shutting down: %v", err)
	}
}
