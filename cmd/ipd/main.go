// Command ipd plays a round-robin iterated prisoner's dilemma tournament
// between the built-in roster, prints the score report, and writes the
// results document. A database URL archives the run; a Redis URL publishes
// the standings; -listen streams progress over WebSockets while the run
// executes.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/h-e19/ipd-tournament-simulator/engine"
	"github.com/h-e19/ipd-tournament-simulator/internal/leaderboard"
	"github.com/h-e19/ipd-tournament-simulator/internal/live"
	"github.com/h-e19/ipd-tournament-simulator/internal/results"
	"github.com/h-e19/ipd-tournament-simulator/internal/store"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

var (
	rounds   = flag.Int("rounds", engine.DefaultRules().Rounds, "Rounds per fixed-length match")
	discount = flag.Float64("discount", engine.DefaultRules().Discount, "Discount factor for discounted and stochastic modes")
	seed     = flag.Uint64("seed", 0, "Base RNG seed (0 picks one from the clock)")
	workers  = flag.Int("workers", runtime.NumCPU(), "Number of concurrent pairings")
	out      = flag.String("out", results.DefaultFilename, "Path for the JSON results document (empty disables it)")
	dbTarget = flag.String("db", "", "Archive database (postgres URL or sqlite path; defaults to DATABASE_URL)")
	listen   = flag.String("listen", "", "Address for the live WebSocket stream (empty disables it)")
	verbose  = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}

	var hub *live.Hub
	var srv *http.Server
	if *listen != "" {
		hub = live.NewHub()
		srv = &http.Server{Addr: *listen, Handler: hub}
		go func() {
			log.Infof("live stream listening on %s", *listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("live stream server: %v", err)
			}
		}()
	}

	roster := engine.DefaultRoster()
	run, err := tournament.New(roster, tournament.Options{
		Rules:   engine.Rules{Rounds: *rounds, Discount: *discount},
		Seed:    baseSeed,
		Workers: *workers,
		OnPairDone: func(pair tournament.PairResult) {
			log.Debugf("pairing finished: %s vs %s", pair.Player1, pair.Player2)
			if hub != nil {
				hub.BroadcastPair(pair)
			}
		},
	})
	if err != nil {
		log.Fatalf("set up tournament: %v", err)
	}

	if hub != nil {
		players := make([]string, 0, len(roster))
		for _, a := range roster {
			players = append(players, a.Name)
		}
		hub.BroadcastStart("", players)
	}

	log.Infof("running tournament: seed=%d rounds=%d discount=%g workers=%d",
		baseSeed, *rounds, *discount, *workers)
	res, err := run.Run(ctx)
	if err != nil {
		log.Fatalf("run tournament: %v", err)
	}
	if hub != nil {
		hub.BroadcastEnd(res)
	}

	doc := results.New(res)
	if err := results.WriteReport(os.Stdout, doc); err != nil {
		log.Fatalf("print report: %v", err)
	}

	failed := false
	if *out != "" {
		if err := doc.Save(*out); err != nil {
			log.Errorf("save results: %v", err)
			failed = true
		} else {
			log.Infof("results written to %s", *out)
		}
	}

	target := *dbTarget
	if target == "" {
		target = os.Getenv("DATABASE_URL")
	}
	if target != "" {
		if err := archive(ctx, target, res, doc); err != nil {
			log.Errorf("archive run: %v", err)
			failed = true
		} else {
			log.Infof("run %s archived", res.RunID)
		}
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		if err := publish(ctx, url, res, doc); err != nil {
			log.Errorf("publish standings: %v", err)
			failed = true
		} else {
			log.Infof("standings for run %s published", res.RunID)
		}
	}

	if srv != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			log.Debugf("live stream shutdown: %v", err)
		}
	}

	log.Infof("completed %d pairings in %v", len(res.Pairs), res.Duration.Round(time.Millisecond))
	if failed {
		os.Exit(1)
	}
}

func archive(ctx context.Context, target string, res *tournament.Result, doc *results.Document) error {
	st, err := store.Open(ctx, target)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveRun(ctx, res, doc)
}

func publish(ctx context.Context, url string, res *tournament.Result, doc *results.Document) error {
	pub, err := leaderboard.New(url)
	if err != nil {
		return err
	}
	defer pub.Close()
	return pub.Publish(ctx, res, doc)
}
