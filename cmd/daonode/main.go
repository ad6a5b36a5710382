package main

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/vocdoni/dao-z-sandbox/circuits"
	"github.com/vocdoni/dao-z-sandbox/config"
	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/prover"
	"github.com/vocdoni/dao-z-sandbox/service"
	"github.com/vocdoni/dao-z-sandbox/storage"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API listen host")
	port := flag.Int("port", 9090, "API listen port")
	dataDir := flag.String("datadir", filepath.Join(os.TempDir(), "daonode"), "directory of the node database")
	logLevel := flag.String("loglevel", config.LogLevel, "log level (debug, info, warn, error)")
	setup := flag.Bool("setup", false, "run a local groth16 setup if no circuit keys are stored")
	vkHash := flag.String("vkHash", "", "sha256 hash (hex) of the verifying key artifact")
	vkURL := flag.String("vkURL", "", "URL the verifying key artifact is downloaded from")
	exportDir := flag.String("export", "", "write the circuit artifacts and the solidity verifier into this directory")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)
	config.KeysDir = filepath.Join(*dataDir, "artifacts")

	database, err := metadb.New(db.TypePebble, filepath.Join(*dataDir, "db"))
	if err != nil {
		log.Fatalf("could not open the database: %v", err)
	}
	ks := prover.NewKeyStore(database)
	defer ks.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, err := loadProver(ctx, ks, *setup, *vkHash, *vkURL)
	if err != nil {
		log.Fatalf("could not load the proposal input verifier: %v", err)
	}
	if pr == nil {
		log.Warnw("no circuit keys available, proposal submissions are disabled")
	}
	if *exportDir != "" && pr != nil {
		if err := export(pr, *exportDir); err != nil {
			log.Fatalf("could not export the circuit artifacts: %v", err)
		}
	}

	api := service.NewAPI(database, ks.Storage(), pr, *host, *port)
	if err := api.Start(ctx); err != nil {
		log.Fatalf("could not start the API service: %v", err)
	}
	defer api.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infow("shutting down")
}

// loadProver returns the prover of the node. A verifying key artifact takes
// precedence over the keys stored in the database.
func loadProver(ctx context.Context, ks *prover.KeyStore, setup bool, vkHash, vkURL string) (*prover.Prover, error) {
	if vkHash != "" {
		hash, err := hex.DecodeString(vkHash)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		return prover.FromArtifacts(ctx, nil, &circuits.CircuitArtifacts{
			VerifyingKey: &circuits.Artifact{RemoteURL: vkURL, Hash: hash},
		})
	}
	if setup {
		return ks.LoadOrSetup(prover.CircuitName, nil)
	}
	pr, err := ks.Load(prover.CircuitName, nil)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return pr, err
}

func export(pr *prover.Prover, dir string) error {
	if err := pr.Export(dir); err != nil {
		return err
	}
	ca, err := pr.Artifacts()
	if err != nil {
		return err
	}
	log.Infow("circuit artifacts exported", "dir", dir,
		"ccs", hex.EncodeToString(ca.ConstraintSystem.Hash),
		"pk", hex.EncodeToString(ca.ProvingKey.Hash),
		"vk", hex.EncodeToString(ca.VerifyingKey.Hash))
	f, err := os.Create(filepath.Join(dir, prover.CircuitName+".sol"))
	if err != nil {
		return err
	}
	defer f.Close()
	return pr.ExportSolidity(f)
}
