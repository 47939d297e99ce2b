// Command dtserve serves decision tables over HTTP, WebSockets, and
// MQTT.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/dtable/interpreters"
	"github.com/Comcast/dtable/storage"
	"github.com/Comcast/dtable/storage/bolt"
	"github.com/Comcast/dtable/util"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {
	var (
		configFile = flag.String("c", "", "optional YAML configuration file")
		httpPort   = flag.String("h", "", "HTTP service port (overrides config)")
		tablesDir  = flag.String("s", "", "tables directory (overrides config)")
		storeFile  = flag.String("p", "", "optional filename for persistence (overrides config)")
		websockets = flag.Bool("w", false, "start Web sockets service")
		watch      = flag.Bool("watch", false, "reread tables when their files change")
		verbose    = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	conf, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *httpPort != "" {
		conf.HTTPPort = *httpPort
	}
	if *tablesDir != "" {
		conf.TablesDir = *tablesDir
	}
	if *storeFile != "" {
		conf.StoreFile = *storeFile
	}
	if *websockets {
		conf.WebSockets = true
	}
	if *watch {
		conf.Watch = true
	}
	if *verbose {
		conf.Debug = true
	}
	util.Logging = conf.Debug

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = run(ctx, conf); err != nil {
		log.Fatal(err)
	}

	log.Printf("main terminating")
}

func run(ctx context.Context, conf *Config) error {
	var store storage.Storage
	if conf.StoreFile != "" {
		b, err := bolt.NewStorage(conf.StoreFile)
		if err != nil {
			return err
		}
		b.Debug = conf.Debug
		store = b
	} else {
		store = storage.NewMemStorage()
	}
	if err := store.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			util.Warnf("storage.Close() error %v", err)
		}
	}()

	s, err := NewService(ctx, conf, store)
	if err != nil {
		return err
	}

	if conf.MQTT != nil {
		if err = NewMQTTBridge(ctx, conf.MQTT, s).Start(ctx); err != nil {
			return err
		}
	}

	l, err := Listen(conf.HTTPPort, conf.MaxConns)
	if err != nil {
		return err
	}

	mux := s.Handler(ctx)
	if conf.WebSockets {
		mux.HandleFunc("/ws/api", s.WebSocketHandler(ctx))
	}

	return s.Serve(ctx, l, mux)
}

// NewService makes a Service, reads its tables, and starts any
// reloading.
func NewService(ctx context.Context, conf *Config, store storage.Storage) (*Service, error) {
	s := &Service{
		Tables:      NewFileSystemTableProvider(conf.TablesDir, store, interpreters.Standard()),
		EvalTimeout: conf.EvalTimeout,
		Debug:       conf.Debug,
	}
	if err := s.Tables.ReadTables(ctx); err != nil {
		return nil, err
	}
	if conf.Reload != "" {
		if err := s.Tables.Reload(ctx, conf.Reload); err != nil {
			return nil, err
		}
	}
	if conf.Watch {
		if err := s.Tables.Watch(ctx, 100*time.Millisecond); err != nil {
			return nil, err
		}
	}
	return s, nil
}
