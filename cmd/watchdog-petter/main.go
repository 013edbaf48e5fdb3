// Command watchdog-petter pets an external hardware watchdog over GPIO
// while a supervised application keeps proving liveness via UDP
// heartbeats. When heartbeats stop, the daemon stops petting and exits so
// the watchdog circuit resets the host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/watchdog-petter/internal/events"
	"github.com/sweeney/watchdog-petter/internal/gpio"
	"github.com/sweeney/watchdog-petter/internal/petter"
	"github.com/sweeney/watchdog-petter/internal/pingee"
	"github.com/sweeney/watchdog-petter/internal/reactor"
	"github.com/sweeney/watchdog-petter/internal/status"
	"github.com/sweeney/watchdog-petter/internal/web"
)

// ErrPingTimeout is the terminal outcome when the supervised application
// stops sending heartbeats. Not an internal error: the daemon dies on
// purpose so the watchdog hardware can reset the host.
var ErrPingTimeout = errors.New("ping timeout")

// Readiness source identities for the dispatch loop.
const (
	tokenPing reactor.Token = iota
	tokenPet
	tokenTimeout
	tokenSignal
)

type options struct {
	chip     string
	line     int
	label    string
	listen   string
	grace    time.Duration
	timeout  time.Duration
	petOn    time.Duration
	petOff   time.Duration
	sim      bool
	broker   string
	httpAddr string
}

func main() {
	var o options
	flag.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip device")
	flag.IntVar(&o.line, "line", gpio.DefaultLine, "GPIO line offset for the watchdog pin")
	flag.StringVar(&o.label, "label", gpio.DefaultLabel, "Expected line label (empty disables verification)")
	flag.StringVar(&o.listen, "listen", pingee.DefaultListen, "UDP address for heartbeat datagrams")
	flag.DurationVar(&o.grace, "grace", pingee.DefaultGrace, "Initial heartbeat grace period")
	flag.DurationVar(&o.timeout, "timeout", pingee.DefaultTimeout, "Steady-state heartbeat timeout")
	flag.DurationVar(&o.petOn, "pet-on", petter.DefaultOnDuration, "Active phase of the pet cycle")
	flag.DurationVar(&o.petOff, "pet-off", petter.DefaultOffDuration, "Inactive phase of the pet cycle")
	flag.BoolVar(&o.sim, "sim", false, "Use a simulated GPIO chip (requires the gpio-sim kernel module)")
	flag.StringVar(&o.broker, "broker", "off", `MQTT broker for lifecycle events ("off" disables)`)
	flag.StringVar(&o.httpAddr, "http", "", "HTTP status address (empty to disable)")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	chip := o.chip
	if o.sim {
		simChip, err := gpio.NewSimChip(o.line, o.label)
		if err != nil {
			return fmt.Errorf("init gpio sim: %w", err)
		}
		defer simChip.Close()
		chip = simChip.DevPath()
		log.Printf("simulating gpio on %s", chip)
	}

	// Timers before the line: nothing must be able to fail between
	// acquiring the line and installing the deferred fail-safe.
	petTimer, err := reactor.NewTimer()
	if err != nil {
		return fmt.Errorf("create pet timer: %w", err)
	}
	defer petTimer.Close()

	deadline, err := reactor.NewTimer()
	if err != nil {
		return fmt.Errorf("create inactivity timer: %w", err)
	}
	defer deadline.Close()

	wdtLine, err := gpio.RequestWatchdogLine(chip, o.line, o.label, gpio.Consumer)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	p := petter.New(wdtLine, petTimer, o.petOn, o.petOff)
	// Guarantees the line ends inactive on every exit path.
	defer p.Close()

	pg, err := pingee.New(o.listen, deadline, o.grace, o.timeout)
	if err != nil {
		return fmt.Errorf("init pingee: %w", err)
	}
	defer pg.Close()

	bridge, err := reactor.NewSignalBridge(syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
	if err != nil {
		return fmt.Errorf("init signal bridge: %w", err)
	}
	defer bridge.Close()

	poller, err := reactor.NewPoller()
	if err != nil {
		return fmt.Errorf("init poller: %w", err)
	}
	defer poller.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:      o.chip,
		Line:      o.line,
		Label:     o.label,
		Listen:    o.listen,
		GraceMs:   o.grace.Milliseconds(),
		TimeoutMs: o.timeout.Milliseconds(),
		PetOnMs:   o.petOn.Milliseconds(),
		PetOffMs:  o.petOff.Milliseconds(),
		Broker:    brokerOrEmpty(o.broker),
		HTTPAddr:  o.httpAddr,
		Sim:       o.sim,
	})

	var publisher events.Publisher = events.NopPublisher{}
	var mqttStatus events.ConnectionStatus
	if o.broker != "" && o.broker != "off" {
		rp, err := events.NewRealPublisher(o.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = rp
		mqttStatus = rp
	}
	defer publisher.Close()

	publishLifecycle(publisher, mqttStatus, tracker, events.EventStartup, "", true)

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: chip=%s line=%d label=%s listen=%s grace=%v timeout=%v",
		chip, o.line, o.label, o.listen, o.grace, o.timeout)

	sig, err := runLoop(poller, p, petTimer, pg, deadline, bridge, tracker)
	switch {
	case err == nil:
		log.Printf("received %v, shutting down", sig)
		publishLifecycle(publisher, mqttStatus, tracker, events.EventShutdown, signalName(sig), true)
		return nil
	case errors.Is(err, ErrPingTimeout):
		log.Printf("heartbeat timeout, letting the watchdog bite")
		publishLifecycle(publisher, mqttStatus, tracker, events.EventTimeout, "", true)
		return err
	default:
		return err
	}
}

// runLoop registers the four readiness sources, performs the eager first
// pet so the duty cycle starts immediately, then blocks on the poller and
// dispatches by token until a terminal event. On clean shutdown it
// returns the delivered signal and a nil error; heartbeat timeout returns
// ErrPingTimeout. Handler failures propagate — there is no retry, an
// ambiguous error must not risk petting the watchdog incorrectly.
func runLoop(poller *reactor.Poller, p *petter.Petter, petTimer *reactor.Timer, pg *pingee.Pingee, deadline *reactor.Timer, bridge *reactor.SignalBridge, tracker *status.Tracker) (os.Signal, error) {
	if err := poller.Register(pg.Fd(), tokenPing); err != nil {
		return nil, err
	}
	if err := poller.Register(petTimer.Fd(), tokenPet); err != nil {
		return nil, err
	}
	if err := poller.Register(deadline.Fd(), tokenTimeout); err != nil {
		return nil, err
	}
	if err := poller.Register(bridge.Fd(), tokenSignal); err != nil {
		return nil, err
	}

	if err := p.Pet(); err != nil {
		return nil, err
	}
	tracker.UpdatePetter(p.Pets(), p.Level())

	evs := make([]reactor.Event, 8)
	for {
		n, err := poller.Wait(evs)
		if err != nil {
			return nil, err
		}
		for _, ev := range evs[:n] {
			switch ev.Token {
			case tokenPing:
				if err := pg.OnReadable(); err != nil {
					return nil, err
				}
				remaining, _ := deadline.Remaining()
				tracker.UpdatePingee(pg.Pings(), pg.LastPing(), remaining)
			case tokenPet:
				if err := p.OnTimerFired(); err != nil {
					return nil, err
				}
				tracker.UpdatePetter(p.Pets(), p.Level())
			case tokenTimeout:
				return nil, ErrPingTimeout
			case tokenSignal:
				return bridge.Consume(), nil
			default:
				// Unreachable in correct operation: every registered
				// source has a token above.
				return nil, fmt.Errorf("readiness on unknown token %d", ev.Token)
			}
		}
	}
}

func publishLifecycle(publisher events.Publisher, mqttStatus events.ConnectionStatus, tracker *status.Tracker, event, reason string, retained bool) {
	if _, nop := publisher.(events.NopPublisher); nop {
		return
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	snap := tracker.Snapshot()
	e := events.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(e); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGHUP:
		return "SIGHUP"
	case syscall.SIGINT:
		return "SIGINT"
	}
	return "UNKNOWN"
}

func brokerOrEmpty(broker string) string {
	if broker == "off" {
		return ""
	}
	return broker
}
