package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	srvipc "github.com/adrianmross/ga-context/internal/ipc"
	"github.com/adrianmross/ga-context/pkg/config"
	ipcmsg "github.com/adrianmross/ga-context/pkg/ipc"
	"github.com/adrianmross/ga-context/pkg/selector"
	"github.com/adrianmross/ga-context/pkg/store"
)

// Service answers selection queries from the selection store.
// The config file is re-read per request for the current container.
type Service struct {
	cfgPath string
	store   store.Store
	log     *logrus.Logger
}

// NewService checks the config is readable and returns a Service over st.
func NewService(cfgPath string, st store.Store, log *logrus.Logger) (*Service, error) {
	if _, err := config.Load(cfgPath); err != nil {
		return nil, err
	}
	return &Service{cfgPath: cfgPath, store: st, log: log}, nil
}

// Serve runs the IPC server on the configured socket.
func (s *Service) Serve() error {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return err
	}
	return srvipc.Serve(cfg.Options.SocketPath, s.Handle, s.log)
}

// Handle dispatches one IPC request.
func (s *Service) Handle(req ipcmsg.Request) (interface{}, error) {
	switch req.Method {
	case "get_selection":
		return s.getSelection(req.Container)
	case "table_id":
		return s.tableID(req.Container)
	case "list":
		return s.store.List()
	case "save_selection":
		return s.saveSelection(req.Container, req.Selection)
	case "delete_selection":
		return s.deleteSelection(req.Container)
	case "export":
		return s.export(req.Container, req.Format)
	default:
		return nil, srvipc.ErrNotImplemented
	}
}

// lookup resolves the container against the config and loads its selection.
func (s *Service) lookup(container string) (string, selector.Selection, error) {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return "", selector.Selection{}, err
	}
	return store.Current(s.store, cfg, container)
}

func (s *Service) getSelection(container string) (interface{}, error) {
	_, sel, err := s.lookup(container)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func (s *Service) tableID(container string) (interface{}, error) {
	id, sel, err := s.lookup(container)
	if err != nil {
		return nil, err
	}
	table, err := sel.TableID()
	if err != nil {
		return nil, err
	}
	return map[string]string{"container": id, "table_id": table}, nil
}

func (s *Service) saveSelection(container string, raw json.RawMessage) (interface{}, error) {
	if container == "" {
		return nil, config.ErrInvalidContainer
	}
	var sel selector.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, err
	}
	if !sel.Complete() {
		return nil, errors.New("selection requires account_id, property_id and profile_id")
	}
	if err := store.Put(s.store, s.cfgPath, container, sel); err != nil {
		return nil, err
	}
	s.log.WithField("container", container).Info("selection saved via ipc")
	return sel, nil
}

func (s *Service) deleteSelection(container string) (interface{}, error) {
	if err := store.Remove(s.store, s.cfgPath, container); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": container}, nil
}

func (s *Service) export(container, format string) (interface{}, error) {
	_, sel, err := s.lookup(container)
	if err != nil {
		return nil, err
	}
	switch format {
	case "env":
		return map[string][]string{"env": EnvLines(sel)}, nil
	case "json", "":
		return sel, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// EnvLines renders a selection as KEY=value lines.
func EnvLines(sel selector.Selection) []string {
	lines := []string{
		fmt.Sprintf("GA_ACCOUNT_ID=%s", sel.AccountID),
		fmt.Sprintf("GA_PROPERTY_ID=%s", sel.PropertyID),
		fmt.Sprintf("GA_PROFILE_ID=%s", sel.ProfileID),
	}
	if table, err := sel.TableID(); err == nil {
		lines = append(lines, fmt.Sprintf("GA_TABLE_ID=%s", table))
	}
	return lines
}

// EnsureConfig ensures config exists at path.
func EnsureConfig(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".ga-context", "config.yml")
	}
	if err := config.EnsureDefaultConfig(path); err != nil {
		return "", err
	}
	return path, nil
}
