package main

import (
	"context"
	"log"
	"strings"

	"github.com/spf13/pflag"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/config"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/importer"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/store"
)

func main() {
	fs := pflag.NewFlagSet("belto-importer", pflag.ExitOnError)
	root := fs.String("root", ".", "Directory of lecture files to import")
	lectureID := fs.String("lecture-id", "", "Target lecture id (required unless --lecture-name is given)")
	lectureName := fs.String("lecture-name", "", "Create a lecture with this name and import into it")

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	ctx := context.Background()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	id := strings.TrimSpace(*lectureID)
	if id == "" {
		if strings.TrimSpace(*lectureName) == "" {
			log.Fatal("either --lecture-id or --lecture-name is required")
		}
		id, err = st.CreateLecture(ctx, *lectureName)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("created lecture %s (%s)", *lectureName, id)
	} else {
		_, found, err := st.GetLecture(ctx, id)
		if err != nil {
			log.Fatal(err)
		}
		if !found {
			log.Fatalf("lecture %s not found", id)
		}
	}

	im := importer.New(st, *root, id)
	if err := im.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
