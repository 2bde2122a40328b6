// Command seed populates the database with development data.
package main

import (
	"flag"
	"log"

	"waverider/internal/config"
	"waverider/internal/database"
	"waverider/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 12, "Number of users to create")
	postsPerUser := flag.Int("posts-per-user", 4, "Posts created per user")
	maxComments := flag.Int("max-comments", 6, "Maximum comments per post")
	rngSeed := flag.Int64("rng-seed", 0, "RNG seed for reproducible runs (0 = random)")
	clean := flag.Bool("clean", false, "Delete existing rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:           *numUsers,
		PostsPerUser:       *postsPerUser,
		MaxCommentsPerPost: *maxComments,
		RNGSeed:            *rngSeed,
		Clean:              *clean,
	}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
