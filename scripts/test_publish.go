//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	station := flag.String("station", "Berlin Hbf", "origin station")
	count := flag.Int("count", domain.CommunityThreshold, "how many dreams to publish")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Сообщения в stream:community:forming, появившиеся после публикации
	startID := fmt.Sprintf("%d-0", time.Now().UnixMilli())

	for i := 0; i < *count; i++ {
		event := domain.DreamSubmittedEvent{
			DreamID:         uuid.NewString(),
			OriginStation:   *station,
			DestinationCity: "Barcelona",
			HasCoordinates:  true,
			SubmittedAt:     time.Now().UTC(),
		}

		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamDreamSubmitted,
			Values: map[string]interface{}{"data": string(data)},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}

		fmt.Printf("published %s dream=%s station=%s\n", id, event.DreamID, event.OriginStation)
	}

	// Воркер считает мечты в базе, поэтому событие придет только если они там есть
	fmt.Printf("\nwaiting for %s...\n", domain.StreamCommunityForming)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamCommunityForming, startID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read stream: %v", err)
		}

		for _, s := range results {
			for _, msg := range s.Messages {
				startID = msg.ID

				data, _ := msg.Values["data"].(string)
				var event domain.CommunityFormingEvent
				if err := json.Unmarshal([]byte(data), &event); err != nil {
					continue
				}
				if event.Station == *station {
					pretty, _ := json.MarshalIndent(event, "", "  ")
					fmt.Printf("community forming:\n%s\n", pretty)
					return
				}
			}
		}
	}

	fmt.Println("timeout: no community event (already announced or not enough dreams stored)")
}
