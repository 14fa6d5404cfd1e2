package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/richinsley/imdrip/app"
	"github.com/richinsley/imdrip/glapi/native"
	"github.com/richinsley/imdrip/glfwcontext"
	"github.com/richinsley/imdrip/options"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	log.SetOutput(os.Stdout)
	name := filepath.Base(os.Args[0])

	opts := options.LoadDefault()
	source, err := opts.Parse(name, os.Args[1:])
	switch {
	case errors.Is(err, options.ErrHelp):
		options.Usage(os.Stdout, name)
		return
	case errors.Is(err, options.ErrUsage):
		log.Println(err)
		options.Usage(os.Stderr, name)
		os.Exit(2)
	case err != nil:
		log.Fatalf("Invalid options: %v", err)
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	window, err := glfwcontext.New(&opts)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Shutdown()

	gl, err := native.New()
	if err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}
	log.Printf("OpenGL version %s", native.Version())

	viewer, err := app.New(window, gl, opts)
	if err != nil {
		log.Fatalf("Failed to start viewer: %v", err)
	}
	defer viewer.Close()

	if source != "" {
		if err := viewer.Open(source); err != nil {
			log.Printf("Failed to open %s: %v", source, err)
		}
	}

	log.Println("Starting render loop...")
	viewer.Run()
}
