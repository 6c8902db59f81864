// Command kilnctl runs the kiln firing controller: it reads a MAX31855
// thermocouple over SPI, drives three GPIO-backed SSR coils through a
// time-proportioning window, and exposes Prometheus metrics and a tiny YAML
// bench-test mode, wired the way danielkucera-gofutura's main.go wires its
// poll loop and metrics HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.yaml.in/yaml/v2"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/dennisrathgeb/kilnctl/internal/hwdoor"
	"github.com/dennisrathgeb/kilnctl/internal/hwssr"
	"github.com/dennisrathgeb/kilnctl/internal/hwthermo"
	"github.com/dennisrathgeb/kilnctl/internal/kiln"
	"github.com/dennisrathgeb/kilnctl/internal/model"
	"github.com/dennisrathgeb/kilnctl/internal/persistence"
	"github.com/dennisrathgeb/kilnctl/internal/ssr"
	"github.com/dennisrathgeb/kilnctl/internal/telemetry"
	"github.com/dennisrathgeb/kilnctl/internal/tick"
)

var (
	flagSettingsPath   = flag.String("settings-path", "kiln-settings.bin", "path to the settings flash-page file")
	flagProgramsPath   = flag.String("programs-path", "kiln-programs.bin", "path to the programs flash-page file")
	flagSimulateConfig = flag.String("simulate-config", "", "optional YAML file of initial settings/program overrides; when set, runs against a simulated plant instead of real SPI/GPIO hardware")
	flagMetricsAddr    = flag.String("metrics-addr", ":9090", "HTTP listen address for /metrics")
	flagSPIPort        = flag.String("spi-port", "", "periph.io SPI port name for the MAX31855 (e.g. /dev/spidev0.0)")
	flagCSPin          = flag.String("cs-pin", "", "periph.io GPIO pin name for the thermocouple chip-select (optional, if not multiplexed by the port)")
	flagSSRPins        = flag.String("ssr-pins", "", "comma-separated periph.io GPIO pin names for the three SSR coils")
	flagDoorPin        = flag.String("door-pin", "", "periph.io GPIO pin name for the door sensor (optional)")
)

// simulateConfig is the YAML shape accepted by -simulate-config, parsed with
// go.yaml.in/yaml/v2, the same library already present in the retrieval
// pack's dependency graph (danielkucera-gofutura).
type simulateConfig struct {
	Settings *model.Settings `yaml:"settings"`
	Program  *model.Program  `yaml:"program"`
}

func main() {
	flag.Parse()

	logger := log.New(os.Stderr, "kilnctl: ", log.LstdFlags)

	store := persistence.NewStore(*flagSettingsPath, *flagProgramsPath)
	settings := store.LoadSettings()

	var startupProgram *model.Program
	var sensor kiln.Sensor
	var coils ssr.Coils
	var door *hwdoor.GPIODoor

	if *flagSimulateConfig != "" {
		cfg := loadSimulateConfig(*flagSimulateConfig, logger)
		if cfg.Settings != nil {
			settings = *cfg.Settings
		}
		startupProgram = cfg.Program

		sim := newSimPlant(settings)
		sensor = sim
		coils = sim
		logger.Printf("running in simulate mode (config=%s); no SPI/GPIO hardware will be touched", *flagSimulateConfig)
	} else {
		if _, err := host.Init(); err != nil {
			logger.Fatalf("periph host init: %v", err)
		}
		sensor = openThermoSensor(logger)
		coils = openSSRCoils(logger)
		door = maybeOpenDoor(logger)
	}

	cell := telemetry.NewCell()
	controller := kiln.New(sensor, coils, settings, cell, 1000, log.New(os.Stderr, "kiln/tick: ", log.LstdFlags))

	if startupProgram == nil {
		ps := store.LoadPrograms()
		if len(ps.Programs) > 0 {
			startupProgram = &ps.Programs[0]
		}
	}
	if startupProgram != nil {
		if err := controller.ProgramStart(*startupProgram); err != nil {
			logger.Printf("startup program_start failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if door != nil {
		go pollDoor(ctx, door, controller, logger)
	}

	reg := prometheus.NewRegistry()
	exporter := telemetry.NewExporter(cell, reg)
	go exporter.Run(ctx, time.Second)

	driver := tick.New(controller, time.Second)
	go driver.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: *flagMetricsAddr, Handler: mux}

	go func() {
		logger.Printf("metrics listening on %s", *flagMetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("metrics server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Print("shutting down")
	cancel()
	if err := controller.ProgramStop(); err != nil {
		logger.Printf("program_stop during shutdown: %v", err)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func loadSimulateConfig(path string, logger *log.Logger) simulateConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatalf("read simulate-config: %v", err)
	}
	var cfg simulateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Fatalf("parse simulate-config: %v", err)
	}
	return cfg
}

func openThermoSensor(logger *log.Logger) kiln.Sensor {
	if *flagSPIPort == "" {
		logger.Fatal("-spi-port is required outside simulate mode")
	}
	port, err := spireg.Open(*flagSPIPort)
	if err != nil {
		logger.Fatalf("open spi port %s: %v", *flagSPIPort, err)
	}
	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		logger.Fatalf("connect spi port %s: %v", *flagSPIPort, err)
	}

	var cs gpio.PinOut
	if *flagCSPin != "" {
		p := gpioreg.ByName(*flagCSPin)
		if p == nil {
			logger.Fatalf("unknown cs gpio pin %q", *flagCSPin)
		}
		cs = p
	}
	return hwthermo.NewSPIReader(conn, cs)
}

func openSSRCoils(logger *log.Logger) ssr.Coils {
	names := splitCommaNonEmpty(*flagSSRPins)
	if len(names) != 3 {
		logger.Fatalf("-ssr-pins must name exactly three GPIO pins, got %d", len(names))
	}
	pins := make([]gpio.PinOut, 3)
	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			logger.Fatalf("unknown ssr gpio pin %q", name)
		}
		pins[i] = p
	}
	return hwssr.NewGPIOCoils(pins[0], pins[1], pins[2], false)
}

func maybeOpenDoor(logger *log.Logger) *hwdoor.GPIODoor {
	if *flagDoorPin == "" {
		return nil
	}
	pin := gpioreg.ByName(*flagDoorPin)
	if pin == nil {
		logger.Fatalf("unknown door gpio pin %q", *flagDoorPin)
	}
	return hwdoor.NewGPIODoor(pin, true)
}

// pollDoor emulates the out-of-scope UI/interrupt layer (spec.md §6): it
// polls the level-sensitive door sensor and delivers set_door_open input
// events only on change, rather than handing the controller a raw GPIO
// handle.
func pollDoor(ctx context.Context, door *hwdoor.GPIODoor, controller *kiln.Controller, logger *log.Logger) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	last := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			open, err := door.Open()
			if err != nil {
				logger.Printf("door read: %v", err)
				continue
			}
			if open != last {
				controller.SetDoorOpen(open)
				last = open
			}
		}
	}
}

func splitCommaNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
