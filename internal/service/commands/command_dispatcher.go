package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	dateFormat    = "2006-01-02"
	ordersListed  = 5
	shortIDLength = 8
)

// HelpText lists the supported commands.
const HelpText = "Commands:\n" +
	"stock <barcode> - stock level of one product\n" +
	"low - products at or below minimum stock\n" +
	"orders - purchase orders awaiting delivery\n" +
	"receive <order id> - mark a purchase order as delivered\n" +
	"report - today's stock report"

// Inventory is the part of the inventory service the chat commands reach.
type Inventory interface {
	LookupBarcode(barcode string) (models.Product, error)
	PurchaseOrders() []models.PurchaseOrder
	ReceiveOrder(ctx context.Context, poID string) (models.PurchaseOrder, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	LowStockSummary(now time.Time) string
	GenerateDailyReport(now time.Time) (string, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory Inventory
	reporting ReportingAdapter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(inventory Inventory, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: inventory,
		reporting: reporting,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command against the inventory and formats the answer.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	now := s.now()

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStock:
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: stock takes one barcode", ErrInvalidArguments)
		}
		p, err := s.inventory.LookupBarcode(cmd.Args[0])
		if err != nil {
			return "", err
		}
		return stockLine(p), nil
	case models.CommandLow:
		return s.reporting.LowStockSummary(now), nil
	case models.CommandOrders:
		return s.openOrders(), nil
	case models.CommandReceive:
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: receive takes one purchase order id", ErrInvalidArguments)
		}
		return s.receive(ctx, cmd.Args[0])
	case models.CommandReport:
		return s.reporting.GenerateDailyReport(now)
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) openOrders() string {
	var open []models.PurchaseOrder
	for _, po := range s.inventory.PurchaseOrders() {
		if po.Status == models.OrderSubmitted {
			open = append(open, po)
		}
	}
	if len(open) == 0 {
		return "No purchase orders awaiting delivery."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d purchase orders awaiting delivery:", len(open))
	for i, po := range open {
		if i == ordersListed {
			fmt.Fprintf(&b, "\n...and %d more", len(open)-ordersListed)
			break
		}
		fmt.Fprintf(&b, "\n- %s %s, %d units, ordered %s", shortID(po.ID), po.SupplierName, po.TotalQuantity(), po.Date.Format(dateFormat))
	}
	return b.String()
}

// receive accepts a full purchase order id or the short form shown by the
// orders command.
func (s *Service) receive(ctx context.Context, ref string) (string, error) {
	id, err := s.matchOrder(ref)
	if err != nil {
		return "", err
	}

	po, err := s.inventory.ReceiveOrder(ctx, id)
	if err != nil {
		if po.ID == "" {
			return "", err
		}
		s.logger.Warn("received order not synced", zap.String("po_id", po.ID), zap.Error(err))
		return fmt.Sprintf("Purchase order %s received: %d units added locally, backend sync pending.", shortID(po.ID), po.TotalQuantity()), nil
	}
	return fmt.Sprintf("Purchase order %s from %s received: %d units added to stock.", shortID(po.ID), po.SupplierName, po.TotalQuantity()), nil
}

func (s *Service) matchOrder(ref string) (string, error) {
	ref = strings.ToLower(ref)
	var matches []string
	for _, po := range s.inventory.PurchaseOrders() {
		id := strings.ToLower(po.ID)
		if id == ref {
			return po.ID, nil
		}
		if strings.HasSuffix(id, ref) {
			matches = append(matches, po.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no purchase order %q", models.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d purchase orders", ErrInvalidArguments, ref, len(matches))
	}
}

func stockLine(p models.Product) string {
	line := fmt.Sprintf("%s (%s): %d in stock, minimum %d.", p.Name, p.Barcode, p.CurrentStock, p.MinStock)
	if p.IsLowStock() {
		line += fmt.Sprintf(" Low stock, suggest ordering %d.", reporting.SuggestedReorder(p))
	}
	return line
}

// shortID keeps the tail of the id; leading characters of time-ordered ids
// repeat across orders placed close together.
func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[len(id)-shortIDLength:]
}
