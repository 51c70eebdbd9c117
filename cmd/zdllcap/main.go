package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"

	"github.com/wl99/node-red-zdll/imgenc"
	"github.com/wl99/node-red-zdll/meter"
	"github.com/wl99/node-red-zdll/zdll"
	"github.com/wl99/node-red-zdll/zdll/native"
	"github.com/wl99/node-red-zdll/zdll/sim"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "2"

	// ConfigFileName is what it sounds like
	ConfigFileName = "zdllcap.yml"
	k              = koanf.New(".")
)

type config struct {
	// Output is the output path template; {{meter}} resolves to the
	// 1-based meter index, and the extension picks the container
	Output string `yaml:"Output"`

	// Format is the pixel format the driver is configured for
	Format string `yaml:"Format"`

	// Meters are the 1-based meter indices to persist
	Meters []int `yaml:"Meters"`

	// Zones optionally overrides the per-meter zone selectors
	Zones []int `yaml:"Zones"`

	// SuccessCodes are the driver return codes treated as success
	SuccessCodes []int `yaml:"SuccessCodes"`

	// Sim substitutes the software camera for the vendor DLL
	Sim bool `yaml:"Sim"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Output:       "capture-{{meter}}.bmp",
		Format:       "gray8",
		Meters:       []int{1},
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
	str := `zdllcap captures frames from ZDLL photometric cameras
It performs one driver capture call and writes one file per configured
meter, then exits with 0 on success or the raw driver code on failure,
so a supervising process can branch on the outcome.

Usage:
	zdllcap <command>

Commands:
	capture
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `zdllcap is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  The command
mkconf generates the configuration file with the default values.

Output may embed {{meter}}, which is replaced by the meter index of each
target.  The file extension selects the container: .bmp, .jpg/.jpeg,
.png, .fits, anything else is a headerless raw dump.

Zones may be empty (capture everything), a single value (broadcast to
every meter), one value per meter, or exactly four values on a
single-meter device (a left, top, right, bottom rectangle).

SuccessCodes exists because the ZDLL family is inconsistent: some driver
builds report success as 0, others as 1.  The default accepts both.

Sim: true runs against the software camera, useful on machines without
the vendor DLL (anything that is not 32-bit windows).`
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
	fmt.Printf("zdllcap version %v\n", Version)
}

func capture() int {
	cfg := config{}
	err := k.Unmarshal("", &cfg)
	if err != nil {
		log.Fatal(err)
	}
	pf, err := imgenc.ParsePixelFormat(cfg.Format)
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

	zones := make([]int32, len(cfg.Zones))
	for i, z := range cfg.Zones {
		zones[i] = int32(z)
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency: 100 * time.Millisecond,
		CharSet:   yacspin.CharSets[59],
		Suffix:    " capturing",
	})
	if err == nil {
		spinner.Start()
	}
	results, capErr := sess.Capture(meter.Options{
		PathTemplate: cfg.Output,
		Format:       pf,
		Zones:        zones,
		Meters:       cfg.Meters,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if capErr != nil {
		log.Println(capErr)
		if len(results) == 0 {
			return 1
		}
	}
	err = yml.NewEncoder(os.Stdout).Encode(results)
	if err != nil {
		log.Println(err)
	}
	return meter.ReturnCode(results)
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
	case "capture":
		code := capture()
		os.Exit(code)
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
