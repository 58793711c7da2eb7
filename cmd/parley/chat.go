package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/errors"
	"github.com/parley-chat/parley/pkg/api"
	"github.com/parley-chat/parley/pkg/client"
	"github.com/parley-chat/parley/pkg/media"
	"github.com/parley-chat/parley/pkg/session"
	"github.com/parley-chat/parley/pkg/store"
	"github.com/parley-chat/parley/pkg/toast"
	"github.com/parley-chat/parley/pkg/trigger"
	"github.com/parley-chat/parley/pkg/wire"
)

func chatCmd() *cobra.Command {
	var (
		configPath string
		username   string
		password   string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Log in and chat from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if username == "" {
				username = cfg.Username
			}
			if username == "" || password == "" {
				return errors.New("E140").
					WithDetail("username and password are required").
					WithSuggestion("Pass --username and --password, or set username in parley.json.")
			}
			return runChat(cmd.Context(), cfg, newLogger(verbose), username, password)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to parley.json")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadOrDefault()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runChat(ctx context.Context, cfg *config.Config, logger *slog.Logger, username, password string) error {
	toasts := toast.NewCenter()
	toasts.Subscribe(func(t toast.Toast, visible bool) {
		if visible {
			fmt.Printf("[%s] %s\n", t.Level, t.Content)
		}
	})

	sess := session.New(session.WithLogger(logger))
	apiClient := api.New(cfg.ServerURL, sess, api.WithToasts(toasts), api.WithLogger(logger))

	login, err := apiClient.Login(ctx, wire.LoginRequest{Username: username, Password: password})
	if err != nil {
		return errors.New("E110").Wrap(err)
	}
	fmt.Printf("logged in as %s (#%d)\n", login.User.Username, login.User.ID)

	mediaStore, err := newMediaStore(ctx, cfg)
	if err != nil {
		return err
	}

	bus := trigger.New()
	st := store.New(login.User.ID, bus)

	mcfg := client.DefaultConfig()
	mcfg.URL = cfg.SocketURL()
	mcfg.ReconnectLimit = cfg.Reconnect.Limit
	mcfg.ReconnectDelay = cfg.ReconnectDelay()

	done := make(chan struct{})
	mgr := client.New(mcfg, st,
		client.WithLogger(logger),
		client.WithTokenSource(sess.Token),
		client.WithForceLogout(func() {
			sess.ForceLogout()
			close(done)
		}),
	)
	mgr.Connect(ctx)
	defer mgr.Close()

	go watch(st, bus, done)

	return repl(ctx, replDeps{
		manager: mgr,
		store:   st,
		api:     apiClient,
		media:   mediaStore,
		done:    done,
	})
}

func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, error) {
	if cfg.Media.Backend == "s3" {
		return newS3Store(ctx, cfg)
	}
	return media.NewDiskStore(cfg.Media.Dir, cfg.Media.BaseURL, media.DefaultConfig())
}

// watch re-derives the displayed lists whenever the trigger bus reports a
// relevant change.
func watch(st *store.Store, bus *trigger.Bus, done chan struct{}) {
	prev := bus.Snapshot()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := bus.Snapshot()
			if snap.Invalidates(prev, trigger.MessageList) && snap.Action.Kind == trigger.Message {
				printLatest(st, snap.Action.ID)
			} else if snap.Invalidates(prev, trigger.RoomList) {
				printRooms(st)
			}
			prev = snap
		}
	}
}

func printRooms(st *store.Store) {
	rooms := st.Rooms()
	fmt.Printf("-- %d rooms --\n", len(rooms))
	for _, r := range rooms {
		unread := ""
		if r.Unreads > 0 {
			unread = fmt.Sprintf(" (%d unread)", r.Unreads)
		}
		fmt.Printf("  #%d %s%s  %s %s\n", r.ID, r.Name, unread, r.LatestTime, r.LatestMsg)
	}
}

func printLatest(st *store.Store, roomID int64) {
	entries := st.Messages(roomID)
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	if last.Kind == store.EntryDivider {
		return
	}
	fmt.Printf("  [#%d %s] %s: %s\n", roomID, last.Clock, last.Message.Name, last.Message.Content)
}

type replDeps struct {
	manager *client.Manager
	store   *store.Store
	api     *api.Client
	media   media.Store
	done    chan struct{}
}

const replHelp = `commands:
  rooms              list rooms
  open <room-id>     select a room and show its messages
  send <text>        send a text message to the selected room
  img <path>         upload an image and send it to the selected room
  members            list members of the selected room
  friends            list accepted friends
  requests           list pending friend requests
  find <username>    look a user up by name
  add <user-id>      send a friend request
  accept <user-id>   accept a friend request
  quit               log out and exit`

func repl(ctx context.Context, deps replDeps) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(replHelp)

	for {
		select {
		case <-deps.done:
			fmt.Println("session ended")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "rooms":
			printRooms(deps.store)

		case "open":
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				fmt.Println("usage: open <room-id>")
				continue
			}
			deps.store.SetCurrentRoom(id)
			for _, e := range deps.store.Messages(id) {
				switch e.Kind {
				case store.EntryDivider:
					fmt.Printf("  ---- %s ----\n", e.Divider)
				case store.EntryOutgoing:
					fmt.Printf("  %s you: %s\n", e.Clock, e.Message.Content)
				default:
					fmt.Printf("  %s %s: %s\n", e.Clock, e.Message.Name, e.Message.Content)
				}
			}

		case "send":
			roomID := deps.store.CurrentRoomID()
			if roomID == 0 {
				fmt.Println("no room selected; use open first")
				continue
			}
			if err := deps.manager.SendMessage(roomID, arg, wire.KindText); err != nil {
				fmt.Println(err)
			}

		case "img":
			if err := sendImage(ctx, deps, arg); err != nil {
				fmt.Println(err)
			}

		case "members":
			for _, m := range deps.store.Members(deps.store.CurrentRoomID()) {
				fmt.Printf("  #%d %s (%s)\n", m.ID, m.Name, m.Rank)
			}

		case "friends":
			for _, f := range deps.store.AcceptedFriends() {
				fmt.Printf("  #%d %s\n", f.ID, f.Nickname)
			}

		case "requests":
			for _, f := range deps.store.IncomingFriends() {
				fmt.Printf("  #%d %s wants to be your friend\n", f.ID, f.Username)
			}

		case "find":
			resp, err := deps.api.GetUserByName(ctx, arg)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if f, ok := deps.store.FriendFromUser(resp); ok {
				fmt.Printf("  #%d %s (%s)\n", f.ID, f.Username, f.Nickname)
			} else {
				fmt.Println("  no such user")
			}

		case "add", "accept":
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				fmt.Printf("usage: %s <user-id>\n", cmd)
				continue
			}
			if cmd == "add" {
				err = deps.manager.AddFriend(id)
			} else {
				err = deps.manager.AcceptFriend(id)
			}
			if err != nil {
				fmt.Println(err)
			}

		case "quit", "exit":
			deps.manager.NotifyClose()
			if _, err := deps.api.Logout(ctx); err != nil {
				fmt.Println(err)
			}
			return nil

		default:
			fmt.Println(replHelp)
		}
	}
}

// sendImage stores a local file and sends its hosted URL as an img message.
func sendImage(ctx context.Context, deps replDeps, path string) error {
	roomID := deps.store.CurrentRoomID()
	if roomID == 0 {
		return fmt.Errorf("no room selected; use open first")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	url, err := deps.media.Save(ctx, info.Name(), contentTypeOf(path), info.Size(), f)
	if err != nil {
		return err
	}
	return deps.manager.SendMessage(roomID, url, wire.KindImg)
}

func contentTypeOf(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
