// Command main runs the database seeder for HoopsNews.
package main

import (
	"flag"
	"log"

	"hoopsnews/internal/config"
	"hoopsnews/internal/database"
	"hoopsnews/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numArticles := flag.Int("articles", 80, "Number of articles to create")
	numThreads := flag.Int("threads", 30, "Number of forum threads to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumArticles: *numArticles,
		NumThreads:  *numThreads,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All seeded users have the password: password123")
}
