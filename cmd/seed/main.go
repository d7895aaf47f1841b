// Command seed populates a development database with demo users, posts,
// likes and comments.
package main

import (
	"context"
	"flag"
	"log"

	"proconnect/internal/config"
	"proconnect/internal/database"
	"proconnect/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Printf("Seeding: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{Seed: *randSeed})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(ctx, *numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	sum, err := s.SeedEngagement(ctx, users, *numPosts)
	if err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d posts, %d likes, %d comments", sum.Users, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
