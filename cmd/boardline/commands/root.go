package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"boardline/config"
	"boardline/internal/app"
	"boardline/internal/domain"
	"boardline/internal/store"
	"boardline/pkg/logger"
)

// EngineFactory builds the owner's session engine from the protocol
// configuration and a previously serialized state (nil for a fresh engine).
// The crypto module's build sets it; without it, protocol commands refuse to
// run.
var EngineFactory func(cfg domain.EngineConfig, state []byte) (domain.SessionEngine, error)

var (
	home       string
	configPath string
	boardURL   string
	owner      string
	selfName   string
	passphrase string

	settings *config.Config
	appCtx   *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "boardline",
		Short: "Deniable asynchronous messaging over a public board",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if home != "" {
				settings.Home = home
			}
			if settings.Home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				settings.Home = filepath.Join(dir, ".boardline")
			}
			if boardURL != "" {
				settings.BoardURL = boardURL
			}
			logger.Init(settings.Log.Level, settings.Log.Format)

			if err := os.MkdirAll(settings.Home, 0o700); err != nil {
				return err
			}

			eng, err := restoreEngine(cmd.Name())
			if err != nil {
				return err
			}

			appCtx, err = app.NewWire(app.Config{
				Settings:        settings,
				Owner:           domain.UserID(owner),
				SelfName:        selfName,
				Engine:          eng,
				StateName:       owner,
				StatePassphrase: passphrase,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.boardline)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&boardURL, "board", "", "board base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&owner, "owner", "", "your user id")
	root.PersistentFlags().StringVar(&selfName, "name", "", "display name offered to peers")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting session state")

	root.AddCommand(
		initCmd(),
		publishKeyCmd(),
		requestCmd(),
		acceptCmd(),
		refuseCmd(),
		sendCmd(),
		recvCmd(),
		readCmd(),
		sweepCmd(),
		contactsCmd(),
	)
	return root.Execute()
}

// restoreEngine unlocks the owner's state blob and rebuilds the session
// engine from it. During init a missing blob starts a fresh engine; any
// other command requires one to exist.
func restoreEngine(command string) (domain.SessionEngine, error) {
	if EngineFactory == nil || owner == "" || passphrase == "" {
		return nil, nil
	}
	engCfg := domain.EngineConfig{
		MaxAnnouncementAge:  settings.Protocol.MaxAnnouncementAge,
		MaxAnnouncementSkew: settings.Protocol.MaxAnnouncementSkew,
		MaxMessageAge:       settings.Protocol.MaxMessageAge,
		MaxMessageSkew:      settings.Protocol.MaxMessageSkew,
		MaxInactivity:       settings.Protocol.MaxInactivity,
		KeepAliveInterval:   settings.Protocol.KeepAliveInterval,
		MaxSessionLag:       settings.Protocol.MaxSessionLag,
	}

	states := store.NewStateBlobStore(settings.Home)
	raw, err := states.UnlockState(owner, passphrase)
	if errors.Is(err, store.ErrStateNotFound) {
		if command != "init" {
			return nil, fmt.Errorf("no session state for %q, run init first", owner)
		}
		eng, err := EngineFactory(engCfg, nil)
		if err != nil {
			return nil, err
		}
		fresh, err := eng.Serialize()
		if err != nil {
			return nil, err
		}
		if err := states.CreateState(owner, passphrase, fresh); err != nil {
			return nil, err
		}
		return eng, nil
	}
	if err != nil {
		return nil, err
	}
	return EngineFactory(engCfg, raw)
}

// requireEngine guards subcommands that mutate protocol state.
func requireEngine() error {
	if appCtx.Engine == nil {
		return fmt.Errorf("no session engine linked; --owner and -p required, and the build must set commands.EngineFactory")
	}
	return nil
}
