// Command migrate applies the database schema.
package main

import (
	"flag"
	"fmt"
	"log"

	"waverider/internal/config"
	"waverider/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	status := flag.Bool("status", false, "Print table status instead of migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db)

	if *status {
		return printStatus(db)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("Migration complete")
	return nil
}

func printStatus(db *gorm.DB) error {
	tables := []string{"users", "posts", "comments", "comment_likes", "favorites", "images"}
	for _, table := range tables {
		state := "present"
		if !db.Migrator().HasTable(table) {
			state = "missing"
		}
		fmt.Printf("%-15s %s\n", table, state)
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
