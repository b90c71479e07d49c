package main

import (
	"log"

	"github.com/joho/godotenv"

	"procurement/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	app, err := app.NewApp()
	if err != nil {
		log.Fatal(err)
	}

	app.Run()
}
