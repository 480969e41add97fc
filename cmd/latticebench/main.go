package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/plus3/lattice/ecs"
)

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }
type health struct{ Current, Max float32 }

const componentCount = 3

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	workerCount := flag.Int("workers", runtime.NumCPU(), "The worker count passed to the parallel movement system.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting Lattice stress test...")

	w, st := ecs.NewWorld(&ecs.WorldConfig{InitialEntityCapacity: uint32(*entityCount)})
	if !st.Ok() {
		log.Fatalf("failed to create world: %v", st)
	}
	defer w.Close()

	posID, _ := ecs.RegisterComponentType[position](w, "Position", ecs.ComponentDescriptor{})
	velID, _ := ecs.RegisterComponentType[velocity](w, "Velocity", ecs.ComponentDescriptor{})
	hpID, _ := ecs.RegisterComponentType[health](w, "Health", ecs.ComponentDescriptor{})

	log.Printf("Populating world with %d entities...\n", *entityCount)
	if st := w.ReserveEntities(uint32(*entityCount)); !st.Ok() {
		log.Fatalf("failed to reserve entities: %v", st)
	}
	for i := 0; i < *entityCount; i++ {
		spawnRandomEntity(w, posID, velID, hpID)
	}
	log.Println("Population complete.")

	moveQuery, _ := w.QueryCreate(ecs.QueryDescriptor{Terms: []ecs.QueryTerm{
		{Component: posID, Access: ecs.AccessWrite},
		{Component: velID, Access: ecs.AccessRead},
	}})
	damageQuery, _ := w.QueryCreate(ecs.QueryDescriptor{Terms: []ecs.QueryTerm{
		{Component: hpID, Access: ecs.AccessWrite},
	}})

	schedule, st := w.ScheduleCreate([]ecs.ScheduleEntry{
		{Query: moveQuery, Fn: func(w *ecs.World, q *ecs.Query, workers int) {
			w.ForEachChunkParallel(q, workers, func(view ecs.ChunkView) {
				positions := ecs.Column[position](view, 0)
				velocities := ecs.Column[velocity](view, 1)
				for i := range positions {
					positions[i].X += velocities[i].DX
					positions[i].Y += velocities[i].DY
				}
			})
		}},
		{Query: damageQuery, Fn: func(w *ecs.World, q *ecs.Query, workers int) {
			it := q.IterBegin()
			for {
				view, ok := it.Next()
				if !ok {
					break
				}
				hps := ecs.Column[health](view, 0)
				for i := range hps {
					if hps[i].Current < hps[i].Max {
						hps[i].Current++
					}
				}
			}
		}},
	})
	if !st.Ok() {
		log.Fatalf("failed to plan schedule: %v", st)
	}

	report := &Report{
		Duration:   *duration,
		Entities:   *entityCount,
		Components: componentCount,
		Batches:    schedule.Stats().BatchCount,
		TickTime: Stats{
			Samples: make([]time.Duration, 0),
		},
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalTicks int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			tickStart := time.Now()
			if st := w.ScheduleExecute(schedule, *workerCount); !st.Ok() {
				log.Fatalf("schedule execution failed: %v", st)
			}
			tickDuration := time.Since(tickStart)

			report.TickTime.Samples = append(report.TickTime.Samples, tickDuration)
			totalTicks++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalTicks = totalTicks
	report.TickTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}

func spawnRandomEntity(w *ecs.World, posID, velID, hpID ecs.ComponentID) {
	e, st := w.EntityCreate()
	if !st.Ok() {
		return
	}

	ecs.AddComponentValue(w, e, posID, position{X: rand.Float32() * 100, Y: rand.Float32() * 100})
	if rand.Intn(2) == 0 {
		ecs.AddComponentValue(w, e, velID, velocity{DX: rand.Float32() - 0.5, DY: rand.Float32() - 0.5})
	}
	if rand.Intn(3) != 0 {
		ecs.AddComponentValue(w, e, hpID, health{Current: 80, Max: 100})
	}
}
