package main

import (
	"flag"
	"log"
	"os"

	"github.com/kinnison/go-realtime-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	webServer := server.NewServer(*port)

	log.Printf("Realtime raytracer web preview")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
