// Command gen-dataset writes a synthetic calibration database: a camera
// orbiting a planar target plus an IMU, for development and tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/reprojection.view/internal/config"
	"github.com/banshee-data/reprojection.view/internal/dataset"
	"github.com/banshee-data/reprojection.view/internal/version"
)

func main() {
	opts := DefaultOptions()
	output := flag.String("o", "calibration.db", "output path")
	flag.IntVar(&opts.Frames, "n", opts.Frames, "number of camera frames")
	flag.StringVar(&opts.Camera, "camera", opts.Camera, "camera sensor name")
	flag.StringVar(&opts.Imu, "imu", opts.Imu, "imu sensor name (empty to omit)")
	flag.Uint64Var(&opts.Seed, "seed", opts.Seed, "reprojection error noise seed")
	configPath := flag.String("config", "", "view config JSON; its max_reprojection_error bounds the initial step errors")
	force := flag.Bool("force", false, "overwrite an existing output file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("gen-dataset"))
		return
	}

	if *configPath != "" {
		cfg, err := config.LoadViewConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if m, ok := cfg.GetMaxReprojectionError(); ok {
			opts.MaxError = m
		}
	}

	if _, err := os.Stat(*output); err == nil {
		if !*force {
			log.Fatalf("%s already exists (use -force to overwrite)", *output)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(*output + suffix); err != nil && !os.IsNotExist(err) {
				log.Fatalf("failed to remove %s: %v", *output+suffix, err)
			}
		}
	}

	db, err := dataset.Create(*output)
	if err != nil {
		log.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	sum, err := Generate(context.Background(), db, opts)
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	log.Printf("done: dataset=%s images=%d targets=%d imu_samples=%d",
		sum.Info.ID, sum.Images, sum.Targets, sum.ImuSamples)
	log.Printf("✓ Created: %s", *output)
}
