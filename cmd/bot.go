package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rdt_go/internal/callbacks"
	"rdt_go/internal/common"
	"rdt_go/models"
	"rdt_go/pkg/reddit"
)

var (
	botID       int64
	botUser     string
	botPassword string
)

// addBotFlags добавляет выбор бота: --id или --user и запасной --password.
func addBotFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&botID, "id", 0, "bot row id")
	cmd.Flags().StringVar(&botUser, "user", "", "bot user name")
	cmd.Flags().StringVar(&botPassword, "password", "", "password used when the row has none")
	cmd.MarkFlagsMutuallyExclusive("id", "user")
	cmd.MarkFlagsOneRequired("id", "user")
}

func selectedIdent() reddit.Ident {
	if botID != 0 {
		return reddit.ByID(botID)
	}
	return reddit.ByUserName(botUser)
}

// withBot открывает выбранного бота и вызывает fn. Незагруженный бот — ошибка.
func withBot(cmd *cobra.Command, fn func(ctx context.Context, b *reddit.Bot) error) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	transport, err := newTransport()
	if err != nil {
		return err
	}
	ident := selectedIdent()
	b, err := reddit.Open(ctx, store, transport, ident, botPassword, botOptions()...)
	if err != nil {
		return err
	}
	if !b.Loaded() {
		return errors.Wrapf(reddit.ErrNotLoaded, "bot %s", ident)
	}
	return fn(ctx, b)
}

func printOK(op string) {
	fmt.Println(op + ": ok")
}

func newBotCommand(use, short string, args cobra.PositionalArgs, run func(ctx context.Context, b *reddit.Bot, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			return withBot(cmd, func(ctx context.Context, b *reddit.Bot) error {
				return run(ctx, b, a)
			})
		},
	}
	addBotFlags(cmd)
	rootCmd.AddCommand(cmd)
	return cmd
}

func parseTarget(kind, id string) (models.ThingKind, string, error) {
	k, err := models.ParseThingKind(kind)
	if err != nil {
		return 0, "", err
	}
	return k, id, nil
}

var (
	pauseMin int
	pauseMax int
	repeat   int
)

func init() {
	enrollCmd := &cobra.Command{
		Use:   "enroll <user> <password>",
		Short: "Logs in a new account and stores it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()
			transport, err := newTransport()
			if err != nil {
				return err
			}
			b, err := reddit.Enroll(ctx, store, transport, args[0], args[1], botOptions()...)
			if err != nil {
				return err
			}
			printSession(b)
			return nil
		},
	}
	rootCmd.AddCommand(enrollCmd)

	newBotCommand("session", "Shows the stored session of a bot.", cobra.NoArgs,
		func(_ context.Context, b *reddit.Bot, _ []string) error {
			printSession(b)
			return nil
		})

	newBotCommand("login", "Logs in again and stores the new session.", cobra.NoArgs,
		func(ctx context.Context, b *reddit.Bot, _ []string) error {
			if err := b.Login(ctx); err != nil {
				return err
			}
			printOK("login")
			return nil
		})

	newBotCommand("vote <up|none|down> <kind> <id>", "Votes on a thing.", cobra.ExactArgs(3),
		func(ctx context.Context, b *reddit.Bot, args []string) error {
			dir, err := models.ParseVoteDirection(args[0])
			if err != nil {
				return err
			}
			kind, id, err := parseTarget(args[1], args[2])
			if err != nil {
				return err
			}
			if err := b.Vote(ctx, dir, kind, id); err != nil {
				return err
			}
			printOK("vote")
			return nil
		})

	newBotCommand("comment <kind> <id> <text>", "Replies to a thing.", cobra.ExactArgs(3),
		func(ctx context.Context, b *reddit.Bot, args []string) error {
			kind, id, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}
			if err := b.Comment(ctx, args[2], kind, id); err != nil {
				return err
			}
			printOK("comment")
			return nil
		})

	newBotCommand("report <kind> <id>", "Reports a thing to moderators.", cobra.ExactArgs(2),
		func(ctx context.Context, b *reddit.Bot, args []string) error {
			kind, id, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}
			if err := b.Report(ctx, kind, id); err != nil {
				return err
			}
			printOK("report")
			return nil
		})

	newBotCommand("listing <page>", "Prints a listing page, e.g. r/golang or message/inbox.", cobra.ExactArgs(1),
		func(ctx context.Context, b *reddit.Bot, args []string) error {
			children, err := b.GetListing(ctx, args[0])
			if err != nil {
				return err
			}
			printListing(children)
			return nil
		})

	newBotCommand("save", "Stores the bot's session and data.", cobra.NoArgs,
		func(ctx context.Context, b *reddit.Bot, _ []string) error {
			if err := b.Save(ctx); err != nil {
				return err
			}
			printOK("save")
			return nil
		})

	runCmd := newBotCommand("run", "Runs the callback bound to the bot.", cobra.NoArgs, runBot)
	runCmd.Flags().IntVar(&repeat, "repeat", 1, "number of runs, 0 repeats until interrupted")
	runCmd.Flags().IntVar(&pauseMin, "pause-min", 30, "minimum pause between runs, seconds")
	runCmd.Flags().IntVar(&pauseMax, "pause-max", 90, "maximum pause between runs, seconds")

	bindCmd := &cobra.Command{
		Use:   "bind <callback>",
		Short: "Binds a named callback to the bot; an empty name unbinds it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := callbacks.Default()[args[0]]; args[0] != "" && !ok {
				return errors.Errorf("unknown callback %q", args[0])
			}
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()
			name := botUser
			if botID != 0 {
				row, err := store.FindByID(ctx, botID)
				if err != nil {
					return err
				}
				name = row.UserName
			}
			if err := store.SetCallback(ctx, name, args[0]); err != nil {
				return err
			}
			printOK("bind")
			return nil
		},
	}
	addBotFlags(bindCmd)
	rootCmd.AddCommand(bindCmd)
}

// runBot вызывает Run repeat раз со случайной паузой между запусками.
func runBot(ctx context.Context, b *reddit.Bot, _ []string) error {
	for i := 0; repeat == 0 || i < repeat; i++ {
		if i > 0 {
			log.Printf("[RUN] Запуск %d завершён, ожидание перед следующим...", i)
			if err := common.WaitWithCancellation(ctx, [2]int{pauseMin, pauseMax}); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
		res, err := b.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("run %d: %v\n", i+1, res)
	}
	return nil
}

func printSession(b *reddit.Bot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "User", "Session", "Callback", "Last updated"})
	updated := ""
	if !b.LastUpdated().IsZero() {
		updated = b.LastUpdated().Format(time.RFC3339)
	}
	t.AppendRow(table.Row{b.ID(), b.UserName(), b.HasSession(), b.CallbackName(), updated})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printListing(children []json.RawMessage) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Subreddit", "Author", "Score", "Title"})
	for _, raw := range children {
		_, s, err := reddit.DecodeThing(raw)
		if err != nil {
			log.Warnf("[LISTING] Не удалось разобрать элемент: %v", err)
			continue
		}
		title := s.Title
		if title == "" {
			title = s.Body
		}
		t.AppendRow(table.Row{s.Name, s.Subreddit, s.Author, s.Score, text.Trim(title, 60)})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(children)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
