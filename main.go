package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	prefixed "github.com/matterbridge/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/42wim/matterdoge/bridge"
	"github.com/42wim/matterdoge/config"
	"github.com/42wim/matterdoge/convert"
	"github.com/42wim/matterdoge/model"
	"github.com/42wim/matterdoge/pkg/dogeclient"
	"github.com/42wim/matterdoge/store"
)

var (
	version = "0.1.0-dev"
	githash string

	logger = logrus.WithFields(logrus.Fields{"prefix": "main"})
)

func main() {
	ourlog := logrus.New()
	ourlog.SetFormatter(&prefixed.TextFormatter{
		PrefixPadding: 13,
		DisableColors: true,
		FullTimestamp: true,
	})

	logger = ourlog.WithFields(logrus.Fields{"prefix": "main"})

	flagConfig := flag.String("conf", "", "config file")
	flagDebug := flag.Bool("debug", false, "enable debug logging")
	flagTrace := flag.Bool("trace", false, "enable trace logging")
	flagVersion := flag.Bool("version", false, "show version")
	flagGops := flag.Bool("gops", false, "enable gops agent")
	flag.Parse()

	if *flagVersion {
		fmt.Printf("version: %s %s\n", version, githash)

		return
	}

	v, err := config.LoadConfig(*flagConfig)
	if err != nil {
		logger.Fatalf("could not load config: %s", err)
	}

	settings, err := config.Parse(v)
	if err != nil {
		logger.Fatalf("invalid config: %s", err)
	}

	settings.Debug = settings.Debug || *flagDebug
	settings.Trace = settings.Trace || *flagTrace
	settings.Gops = settings.Gops || *flagGops

	level := "info"

	switch {
	case settings.Trace:
		level = "trace"
	case settings.Debug:
		level = "debug"
	}

	if level != "info" {
		logger.Infof("enabling %s", level)

		l, _ := logrus.ParseLevel(level)
		ourlog.SetLevel(l)
	}

	model.SetLogger(ourlog.WithFields(logrus.Fields{"prefix": "model"}))
	convert.SetLogger(ourlog.WithFields(logrus.Fields{"prefix": "convert"}))
	store.SetLogger(ourlog.WithFields(logrus.Fields{"prefix": "store"}))
	config.Logger = ourlog.WithFields(logrus.Fields{"prefix": "config"})

	if settings.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			logger.Error(err)
		}

		logger.Infof("gops agent started")
	}

	logger.Infof("Running version %s %s", version, githash)

	if err := run(settings, level); err != nil {
		logger.Fatal(err)
	}
}

func run(settings *config.Settings, level string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dc := dogeclient.New(&dogeclient.Credentials{
		Server:        settings.Server,
		Token:         settings.Token,
		RefreshToken:  settings.RefreshToken,
		SkipTLSVerify: settings.SkipTLSVerify,
	}, settings.Prefix...)
	dc.SetLogLevel(level)

	if settings.Directory != "" {
		dir, err := store.Open(settings.Directory)
		if err != nil {
			return err
		}
		defer dir.Close()

		dc.Directory = dir
	}

	if err := dc.Connect(ctx); err != nil {
		return err
	}
	defer dc.Logout()

	go func() {
		if _, err := dc.FetchRooms(ctx); err != nil {
			logger.Errorf("fetching rooms failed: %s", err)
		}

		if settings.Room == "" {
			return
		}

		if _, err := dc.JoinRoom(ctx, settings.Room); err != nil {
			logger.Errorf("joining %s failed: %s", settings.Room, err)
		}
	}()

	cmds := &commands{
		resolver:           convert.Default,
		wrapWidth:          settings.WrapWidth,
		syntaxHighlighting: settings.SyntaxHighlighting,
	}

	return eventLoop(ctx, dc, cmds)
}

func eventLoop(ctx context.Context, gw bridge.Gateway, cmds *commands) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")

			return nil
		case ev := <-gw.Events():
			switch e := ev.Data.(type) {
			case *bridge.ReadyEvent:
				logger.Infof("ready as %s", e.User.Mention)
			case *bridge.RoomsFetchedEvent:
				for _, r := range e.Rooms {
					logger.Infof("room %s (%s): %d people", r.Name, r.ID, r.Size())
				}
			case *bridge.RoomJoinEvent:
				logger.Infof("joined %s", e.Room)
			case *bridge.UserJoinEvent:
				logger.Infof("%s joined %s", e.User, e.RoomID)
			case *bridge.UserLeaveEvent:
				logger.Infof("%s left %s", e.UserID, e.RoomID)
			case *bridge.MessageEvent:
				logger.Infof("<%s> %s", e.Message.Author, e.Message)

				reply, ok, err := cmds.handle(ctx, e.Context)
				if err != nil {
					logger.Errorf("command failed: %s", err)
				}

				if ok && reply != "" {
					logger.Info(reply)
				}
			case *bridge.LogoutEvent:
				logger.Info("logged out")

				return nil
			}
		}
	}
}
