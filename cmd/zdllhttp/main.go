package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"goji.io"

	"github.com/wl99/node-red-zdll/meter"
	"github.com/wl99/node-red-zdll/server/middleware/locker"
	"github.com/wl99/node-red-zdll/zdll"
	"github.com/wl99/node-red-zdll/zdll/native"
	"github.com/wl99/node-red-zdll/zdll/sim"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "2"

	// ConfigFileName is what it sounds like
	ConfigFileName = "zdll-http.yml"
	k              = koanf.New(".")
)

type config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// Root is the URL prefix the camera routes are mounted under
	Root string `yaml:"Root"`

	// SuccessCodes are the driver return codes treated as success
	SuccessCodes []int `yaml:"SuccessCodes"`

	// Sim substitutes the software camera for the vendor DLL
	Sim bool `yaml:"Sim"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:         ":8000",
		Root:         "/",
		SuccessCodes: []int{0, 1},
	}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `zdll-http exposes control of ZDLL photometric cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of loading a 32-bit DLL themselves.

Usage:
	zdll-http <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `zdll-http is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.

Routes under Root:
	GET  /status   device metadata
	POST /capture  one driver capture, files written server-side
	GET  /frame    one frame served over the wire (fmt=jpg|png|bmp)
	GET  /lock     whether the server is locked
	POST /lock     take the server offline (423) or back online

The capture routes are rate limited to one per second; the vendor DLL
misbehaves when captures are thrashed.

Bootup retries driver init for a few seconds before giving up; the DLL
is commonly unresponsive right after the camera is powered on.  Power
cycle the camera if bootup never succeeds.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("zdll-http version %v\n", Version)
}

func run() {
	cfg := config{}
	err := k.Unmarshal("", &cfg)
	if err != nil {
		log.Fatal(err)
	}

	var drv zdll.Driver
	if cfg.Sim {
		drv = sim.New()
	} else {
		d, err := native.New()
		if err != nil {
			log.Fatal(err, "; set Sim: true to use the software camera")
		}
		drv = d
	}
	sess := meter.NewSession(drv)
	if len(cfg.SuccessCodes) > 0 {
		sess.Success = zdll.SuccessSet(cfg.SuccessCodes)
	}
	defer sess.Finalize()

	// the session itself never retries init; this loop is supervision,
	// the DLL is flaky for a moment after camera power-on
	op := func() error {
		err := sess.Initialize()
		if err != nil {
			log.Println("driver init failed, will retry:", err)
		}
		return err
	}
	err = backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     250 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      10 * time.Second,
		Clock:               backoff.SystemClock})
	if err != nil {
		log.Fatal(err)
	}
	st, err := sess.Status()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("connected to %s, %dx%d, %d meters\n", st.Manufacturer, st.Width, st.Height, st.Meters)

	w := meter.NewHTTPWrapper(sess)
	lk := locker.New()
	locker.Inject(w.RouteTable, lk)
	mux := goji.NewMux()
	mux.Use(lk.Check)
	w.RouteTable.Bind(mux)

	hndlrS := cfg.Root
	if !strings.HasPrefix(hndlrS, "/") {
		hndlrS = "/" + hndlrS
	}
	if hndlrS != "/" {
		hndlrS = strings.TrimSuffix(hndlrS, "/")
	}
	rootMux := chi.NewRouter()
	rootMux.Mount(hndlrS, mux)
	log.Println("now listening for requests at ", cfg.Addr+hndlrS)
	log.Fatal(http.ListenAndServe(cfg.Addr, rootMux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
