// Command simulate publishes synthetic sample cycles to the source topic so
// the service and dashboard can be exercised without field hardware. Each
// seeded sensor gets a slow sinusoidal water level with per-sample noise.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -brokers localhost:9092 \
//	  -topic raw-sample-cycles \
//	  -sensors sensors.json \
//	  -interval 5s -cycles 100
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/floodwatch/water-level-service/internal/config"
	"github.com/floodwatch/water-level-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	topic := flag.String("topic", "raw-sample-cycles", "source topic to publish cycles to")
	sensorsFile := flag.String("sensors", "sensors.json", "sensor seed file")
	interval := flag.Duration("interval", 5*time.Second, "delay between cycles per sensor")
	cycles := flag.Int("cycles", 0, "number of cycles per sensor (0 = run until interrupted)")
	samplesPerCycle := flag.Int("samples", 5, "raw samples per cycle")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	sensors, err := config.LoadSensors(*sensorsFile)
	if err != nil {
		return err
	}
	if len(sensors) == 0 {
		return fmt.Errorf("no sensors in %s", *sensorsFile)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(strings.Split(*brokers, ",")...),
		Topic:    *topic,
		Balancer: &kafkago.LeastBytes{},
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("simulating %d sensors on %s every %s (seed %d)", len(sensors), *topic, *interval, *seed)

	for i := 0; *cycles == 0 || i < *cycles; i++ {
		for _, sensor := range sensors {
			msg, err := cycleMessage(sensor, i, *samplesPerCycle, rng)
			if err != nil {
				return err
			}
			if err := writer.WriteMessages(ctx, msg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("publish cycle for sensor %d: %w", sensor.ID, err)
			}
		}
		log.Printf("cycle %d published for %d sensors", i+1, len(sensors))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(*interval):
		}
	}
	return nil
}

// cycleMessage builds one synthetic cycle: the water level oscillates
// between roughly 20% and 90% of the critical threshold so all three
// severities show up over a run.
func cycleMessage(sensor domain.Sensor, cycle, samples int, rng *rand.Rand) (kafkago.Message, error) {
	mid := 0.55 * sensor.CriticalThreshold
	amplitude := 0.35 * sensor.CriticalThreshold
	level := mid + amplitude*math.Sin(float64(cycle)/10+float64(sensor.ID))

	distances := make([]float64, samples)
	for i := range distances {
		noise := rng.NormFloat64() * 0.5
		distances[i] = sensor.CalibrationHeight - level + noise
	}

	payload, err := json.Marshal(map[string]any{
		"sensor_id": sensor.ID,
		"samples":   distances,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return kafkago.Message{}, err
	}

	return kafkago.Message{
		Key:   []byte(strconv.Itoa(sensor.ID)),
		Value: payload,
	}, nil
}
