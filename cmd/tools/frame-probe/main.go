// Command frame-probe resolves frames of a calibration database and prints
// the panel patches a renderer would receive, one JSON document per frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/reprojection.view/internal/config"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/version"
)

func main() {
	var opts Options
	flag.StringVar(&opts.DB, "db", "calibration.db", "path to calibration sqlite DB")
	flag.StringVar(&opts.Sensor, "sensor", "", "sensor name (empty prints a dataset summary)")
	sensorType := flag.String("type", string(sensor.Camera), "sensor type: camera or imu")
	flag.IntVar(&opts.Index, "idx", 0, "frame index")
	flag.IntVar(&opts.Count, "frames", 1, "number of consecutive frames, wrapping at the end")
	flag.StringVar(&opts.Step, "step", "", "calibration step (default from config)")
	flag.StringVar(&opts.Axes, "axes", "", "comma separated gizmo axes to draw (default all)")
	configPath := flag.String("config", "", "view config JSON")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("frame-probe"))
		return
	}
	opts.SensorType = sensor.Type(*sensorType)

	cfg := config.EmptyViewConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadViewConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if err := Probe(context.Background(), opts, cfg, os.Stdout); err != nil {
		log.Fatalf("probe failed: %v", err)
	}
}
