package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"net/http"
	_ "net/http/pprof"
	"strings"
	"time"

	"github.com/faiface/mainthread"
	"github.com/humboldt-xie/tinyterrain/config"
	"github.com/humboldt-xie/tinyterrain/scene"
	"github.com/humboldt-xie/tinyterrain/world"
	"github.com/pkg/errors"
)

var (
	configPath   = flag.String("c", "", "yaml config file")
	seed         = flag.Uint("seed", 0, "terrain seed, random or the last used one if unset")
	radius       = flag.Int("r", world.DefaultConfig().Radius, "load radius in chunks")
	dbPath       = flag.String("db", "", "session database")
	serverAddr   = flag.String("s", "", "fetch terrain from this server")
	listenAddr   = flag.String("l", "", "serve terrain on this address")
	headless     = flag.Bool("headless", false, "run without a window")
	snapshotPath = flag.String("snapshot", "", "write a top-down map to this file")
	pprofPort    = flag.String("pprof", "", "http pprof port")
)

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	cfg.Terrain.Seed = uint32(*seed)
	cfg.SeedSet = explicit["seed"]
	cfg.Terrain.Radius = *radius
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	cfg.Server = *serverAddr
	cfg.Listen = *listenAddr
	cfg.Snapshot = *snapshotPath
	if *configPath != "" {
		fromFile, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RegisterBlocks(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*world.BoltStore, error) {
	p := cfg.DB
	if cfg.Server != "" {
		p = "cache_" + strings.Replace(cfg.Server, ":", "_", -1) + ".db"
	}
	return world.NewBoltStore(p)
}

func resolveSeed(cfg *config.Config, store world.Store) {
	if cfg.SeedSet {
		return
	}
	if last, ok := store.LastSeed(); ok {
		cfg.Terrain.Seed = last
	} else {
		cfg.Terrain.Seed = rand.New(rand.NewSource(time.Now().UnixNano())).Uint32()
	}
	cfg.SeedSet = true
}

func loadSession(store world.Store, terrain world.Config) (*world.Session, error) {
	seed := terrain.Seed
	sess, err := store.LoadSession(seed)
	if err != nil {
		log.Printf("load session: %v", err)
	}
	if sess != nil {
		log.Printf("restored session %s at %v", sess.ID, sess.Position)
		return sess, nil
	}
	gen, err := world.NewGenerator(terrain)
	if err != nil {
		return nil, err
	}
	sess = world.NewSession(seed, scene.SpawnPosition(seed, gen))
	log.Printf("new session %s at %v", sess.ID, sess.Position)
	return sess, nil
}

func newChunkStore(cfg *config.Config) (*world.ChunkStore, func(), error) {
	if cfg.Server == "" {
		s, err := world.NewChunkStore(cfg.Terrain)
		return s, func() {}, err
	}
	remote, err := world.DialRemote(cfg.Server)
	if err != nil {
		return nil, nil, err
	}
	cfg.Terrain.Seed = remote.Seed
	s, err := world.NewChunkStore(cfg.Terrain, world.WithSource(remote))
	if err != nil {
		remote.Close()
		return nil, nil, err
	}
	return s, func() { remote.Close() }, nil
}

func serve(cfg *config.Config) (*world.Server, error) {
	gen, err := world.NewGenerator(cfg.Terrain)
	if err != nil {
		return nil, err
	}
	srv, err := world.NewServer(world.NewTerrainService(cfg.Terrain.Seed, gen))
	if err != nil {
		return nil, err
	}
	addr := cfg.Listen
	if strings.Index(addr, ":") == -1 {
		addr += ":" + world.DefaultPort
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	log.Printf("serving terrain seed %d on %s", cfg.Terrain.Seed, l.Addr())
	go func() {
		if err := srv.Serve(l); err != nil {
			log.Printf("terrain server stopped: %v", err)
		}
	}()
	return srv, nil
}

func snapshot(cfg *config.Config, chunks *world.ChunkStore, sess *world.Session) error {
	chunks.Update(sess.Position)
	for !chunks.Idle() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := scene.SaveSnapshot(chunks, cfg.Snapshot, 2); err != nil {
		return err
	}
	log.Printf("snapshot of %v saved to %s", chunks.ChunkPosition(), cfg.Snapshot)
	return nil
}

func setup() (*config.Config, *world.BoltStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Server == "" {
		resolveSeed(cfg, store)
		log.Printf("using seed %X", cfg.Terrain.Seed)
	}
	return cfg, store, nil
}

func runHeadless(cfg *config.Config, store *world.BoltStore) error {
	if cfg.Listen == "" && cfg.Snapshot == "" {
		return errors.New("headless mode needs -l or -snapshot")
	}
	var srv *world.Server
	if cfg.Listen != "" {
		var err error
		srv, err = serve(cfg)
		if err != nil {
			return err
		}
		defer srv.Close()
	}
	if cfg.Snapshot != "" {
		chunks, closeSource, err := newChunkStore(cfg)
		if err != nil {
			return err
		}
		sess, err := loadSession(store, cfg.Terrain)
		if err == nil {
			err = snapshot(cfg, chunks, sess)
		}
		chunks.Close()
		closeSource()
		if err != nil {
			return err
		}
	}
	if srv != nil {
		tick := time.NewTicker(time.Minute)
		for range tick.C {
			log.Printf("terrain server sessions %d", srv.Sessions())
		}
	}
	return nil
}

func run(cfg *config.Config, store *world.BoltStore) {
	if cfg.Listen != "" {
		srv, err := serve(cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer srv.Close()
	}

	chunks, closeSource, err := newChunkStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeSource()
	defer chunks.Close()

	sess, err := loadSession(store, cfg.Terrain)
	if err != nil {
		log.Fatal(err)
	}
	sc := scene.New(chunks, cfg.Day())
	game, err := NewGame(cfg.Window.Width, cfg.Window.Height, sc, sess, cfg.Snapshot)
	if err != nil {
		log.Panic(err)
	}
	defer game.Close()

	md := time.Second / 120
	d := md
	timer := time.NewTimer(d)
	for !game.ShouldClose() {
		<-timer.C
		start := time.Now()
		game.Update()
		d = md - time.Since(start)
		if d < 0 {
			d = 1
		}
		timer.Reset(d)
	}
	if err := store.SaveSession(game.Session(sess)); err != nil {
		log.Printf("save session: %v", err)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	flag.Parse()
	go func() {
		if *pprofPort != "" {
			log.Fatal(http.ListenAndServe(*pprofPort, nil))
		}
	}()

	cfg, store, err := setup()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if *headless {
		if err := runHeadless(cfg, store); err != nil {
			log.Fatal(err)
		}
		return
	}
	mainthread.Run(func() {
		run(cfg, store)
	})
}
