package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/database"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/service"
)

type RoomsConfig struct {
	Rooms []models.Room `yaml:"rooms"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		roomsPath = flag.String("rooms", "configs/rooms.yaml", "path to rooms.yaml")
		dbPath    = flag.String("db", "./data/pansiyon.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*roomsPath)
	if err != nil {
		return fmt.Errorf("read rooms: %w", err)
	}
	var cfg RoomsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse rooms: %w", err)
	}
	if len(cfg.Rooms) == 0 {
		return fmt.Errorf("no rooms in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rooms := service.NewRoomService(db, nil, false, &logger)
	existing, err := rooms.ListRooms(ctx, models.RoomFilter{})
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	byNumber := make(map[string]int64, len(existing))
	for _, r := range existing {
		byNumber[r.Number] = r.ID
	}

	created := 0
	updated := 0
	for i := range cfg.Rooms {
		room := cfg.Rooms[i]
		if room.Number == "" {
			continue
		}
		if id, ok := byNumber[room.Number]; ok {
			if _, err = rooms.UpdateRoom(ctx, id, &room); err != nil {
				return fmt.Errorf("update %s: %w", room.Number, err)
			}
			updated++
			continue
		}
		if _, err = rooms.CreateRoom(ctx, &room); err != nil {
			return fmt.Errorf("create %s: %w", room.Number, err)
		}
		created++
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
