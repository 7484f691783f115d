package main

import (
	"log"

	"url-chatroom/internal/config"
	"url-chatroom/internal/model"
	"url-chatroom/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Server.DBConnection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Server.DBConnection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Running AutoMigrate...")
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 2: Creating views...")
	postMigrationSQL := []string{
		`CREATE OR REPLACE VIEW thread_activity AS
		 SELECT t.id AS thread_id, t.thread_key, COUNT(m.id) AS message_count, MAX(m.created_at) AS last_message_at
		 FROM threads t LEFT JOIN messages m ON m.thread_id = t.id
		 GROUP BY t.id, t.thread_key;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: database migration completed.")
}
