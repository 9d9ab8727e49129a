package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	syncengine "github.com/josepatrial/studioapviagem-sub000/internal/sync"
)

// Run dispatches a single command. args is os.Args[1:] with config flags
// already consumed by the config loader.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := ""
	for _, arg := range args {
		if len(arg) > 0 && arg[0] != '-' {
			cmd = arg
			break
		}
	}

	switch cmd {
	case "login":
		return a.cmdLogin(ctx)
	case "sync":
		return a.cmdSync(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "watch":
		return a.cmdWatch(ctx)
	case "list":
		return a.cmdList(ctx, args)
	case "", "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `usage: tripsync [flags] <command>

commands:
  login    authenticate against the backend
  sync     run one reconciliation pass
  status   print sync status and pending count
  watch    keep the pending count fresh until interrupted
  list     list a local collection: list <collection>`)
}

func (a *App) cmdLogin(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer func() {
		for i := range password {
			password[i] = 0
		}
	}()

	if err := a.identity.Login(ctx, email, password); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid credentials")
			return err
		}
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.identity.SubjectID())

	// First authenticated moment: fire the once-per-process automatic sync.
	a.orchestrator.AutoSyncOnce(ctx)
	return nil
}

func (a *App) cmdSync(ctx context.Context) error {
	result, err := a.orchestrator.StartSync(ctx)
	switch {
	case errors.Is(err, common.ErrSyncInProgress):
		fmt.Fprintln(a.out, "A sync is already running")
		return nil
	case errors.Is(err, common.ErrOffline):
		fmt.Fprintln(a.out, "Offline; try again later")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "Synced %d, errors %d, skipped %d, pulled %d\n",
		result.Synced, result.Errors, result.Skipped, result.Pulled)
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	a.orchestrator.RefreshPendingCount(ctx)
	state := a.orchestrator.State()

	fmt.Fprintf(a.out, "status: %s\n", state.Status)
	if !state.LastSyncTime.IsZero() {
		fmt.Fprintf(a.out, "last sync: %s\n", state.LastSyncTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(a.out, "pending: %d\n", state.PendingCount)
	return nil
}

func (a *App) cmdWatch(ctx context.Context) error {
	a.orchestrator.Subscribe(func(state syncengine.State) {
		fmt.Fprintf(a.out, "status=%s pending=%d\n", state.Status, state.PendingCount)
	})
	a.orchestrator.Watch(ctx, a.config.PendingRefreshInterval)
	return nil
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	collection := models.CollectionTrips
	seen := false
	for _, arg := range args {
		if len(arg) > 0 && arg[0] == '-' {
			continue
		}
		if !seen {
			seen = true // the "list" token itself
			continue
		}
		collection = arg
		break
	}

	records, err := a.fleet.List(ctx, collection, "")
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Fprintf(a.out, "%s  [%s]  %s\n", rec.LocalID, rec.Status, rec.Payload)
	}
	fmt.Fprintf(a.out, "%d record(s)\n", len(records))
	return nil
}
