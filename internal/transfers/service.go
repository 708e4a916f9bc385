package transfers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foresttrail/trailops/internal/catalog"
	"github.com/foresttrail/trailops/internal/inventory"
	dbpkg "github.com/foresttrail/trailops/pkg/db"
	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/enums"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/logger"
	"github.com/foresttrail/trailops/pkg/metrics"
	"github.com/foresttrail/trailops/pkg/outbox"
	"github.com/foresttrail/trailops/pkg/outbox/payloads"
	"github.com/foresttrail/trailops/pkg/pagination"
)

const codeConstraint = "ux_transfer_requests_code"

const (
	opCreate      = "create"
	opUpdateLines = "update_lines"
	opTransition  = "transition"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the transfer request lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*TransferDetail, error)
	UpdateLines(ctx context.Context, input UpdateLinesInput) (*TransferDetail, error)
	TransitionStatus(ctx context.Context, input TransitionInput) (*TransferDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*TransferDetail, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*TransferList, error)
	Movements(ctx context.Context, id uuid.UUID) ([]inventory.MovementDTO, error)
}

// ServiceParams wires the transfer service.
type ServiceParams struct {
	TxRunner  txRunner
	Repo      Repository
	Ledger    inventory.Ledger
	Movements inventory.MovementLog
	Catalog   catalog.Repository
	Outbox    outboxPublisher
	Codes     CodeGenerator
	Metrics   *metrics.TransferMetrics
	Logger    *logger.Logger
	Now       func() time.Time
	MaxLines  int
}

type service struct {
	tx        txRunner
	repo      Repository
	ledger    inventory.Ledger
	movements inventory.MovementLog
	catalog   catalog.Repository
	outbox    outboxPublisher
	codes     CodeGenerator
	metrics   *metrics.TransferMetrics
	logg      *logger.Logger
	now       func() time.Time
	maxLines  int
}

// NewService builds the transfer service.
func NewService(p ServiceParams) (Service, error) {
	if p.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Repo == nil {
		return nil, fmt.Errorf("transfer repository required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if p.Movements == nil {
		return nil, fmt.Errorf("movement log required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Codes.prefix == "" {
		p.Codes = NewCodeGenerator(DefaultCodePrefix, time.UTC)
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		tx:        p.TxRunner,
		repo:      p.Repo,
		ledger:    p.Ledger,
		movements: p.Movements,
		catalog:   p.Catalog,
		outbox:    p.Outbox,
		codes:     p.Codes,
		metrics:   p.Metrics,
		logg:      p.Logger,
		now:       p.Now,
		maxLines:  p.MaxLines,
	}, nil
}

func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *service) Create(ctx context.Context, input CreateInput) (detail *TransferDetail, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, opCreate, started, err) }()

	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validateLocations(input.SourceLocationID, input.DestinationLocationID); err != nil {
		return nil, err
	}
	if err := validateLineSet(input.Lines, s.maxLines); err != nil {
		return nil, err
	}
	locations, err := s.catalog.FindLocations(ctx, []uuid.UUID{input.SourceLocationID, input.DestinationLocationID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load locations")
	}
	if err := checkLocation(locations, input.SourceLocationID, "source"); err != nil {
		return nil, err
	}
	if err := checkLocation(locations, input.DestinationLocationID, "destination"); err != nil {
		return nil, err
	}
	snapshot, err := s.checkAvailability(ctx, s.catalog, s.ledger, input.SourceLocationID, input.Lines)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	totalItems, totalQty := lineTotals(input.Lines)
	header := models.TransferRequest{
		ID:                    uuid.New(),
		SourceLocationID:      input.SourceLocationID,
		DestinationLocationID: input.DestinationLocationID,
		Status:                enums.TransferStatusPending,
		Reason:                input.Reason,
		TotalItems:            totalItems,
		TotalQuantity:         totalQty,
		CreatedBy:             input.Actor,
		UpdatedBy:             input.Actor,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	lines := buildLines(header.ID, input.Lines, snapshot, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		code, err := s.codes.NextCode(ctx, tx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reserve transfer code")
		}
		header.Code = code

		if err := repo.CreateTransfer(ctx, &header); err != nil {
			if dbpkg.IsUniqueViolation(err, codeConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "transfer code already taken").
					WithDetails(map[string]any{"code": code})
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create transfer")
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create transfer lines")
		}
		return s.emit(ctx, tx, enums.EventTransferCreated, header.ID, input.Actor, now, payloads.TransferCreatedEvent{
			TransferID:            header.ID,
			Code:                  header.Code,
			SourceLocationID:      header.SourceLocationID,
			DestinationLocationID: header.DestinationLocationID,
			Status:                header.Status,
			TotalItems:            header.TotalItems,
			TotalQuantity:         header.TotalQuantity,
			Lines:                 linePayloads(lines),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithTransferID(s.logg.WithActor(ctx, input.Actor), header.ID.String()), map[string]any{
			"code":           header.Code,
			"total_items":    header.TotalItems,
			"total_quantity": header.TotalQuantity,
		})
		s.logg.Info(logCtx, "transfer.created")
	}
	return newDetail(header, lines), nil
}

func (s *service) UpdateLines(ctx context.Context, input UpdateLinesInput) (detail *TransferDetail, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, opUpdateLines, started, err) }()

	if input.TransferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validateLineSet(input.Lines, s.maxLines); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		header, err := s.lockTransfer(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}
		if !isEditable(header.Status) {
			return pkgerrors.New(pkgerrors.CodeInvalidState, fmt.Sprintf("lines cannot be edited while %s", header.Status)).
				WithDetails(map[string]any{
					"transfer_id": header.ID.String(),
					"status":      header.Status,
				})
		}

		snapshot, err := s.checkAvailability(ctx, s.catalog.WithTx(tx), s.ledger.WithTx(tx), header.SourceLocationID, input.Lines)
		if err != nil {
			return err
		}

		now := s.clock()
		lines := buildLines(header.ID, input.Lines, snapshot, now)
		if err := repo.ReplaceLines(ctx, header.ID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "replace transfer lines")
		}

		totalItems, totalQty := lineTotals(input.Lines)
		updates := map[string]any{
			"total_items":    totalItems,
			"total_quantity": totalQty,
			"updated_by":     input.Actor,
			"updated_at":     now,
		}
		if input.Reason != nil {
			updates["reason"] = *input.Reason
			header.Reason = input.Reason
		}
		if err := repo.UpdateHeader(ctx, header.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update transfer totals")
		}
		header.TotalItems = totalItems
		header.TotalQuantity = totalQty
		header.UpdatedBy = input.Actor
		header.UpdatedAt = now

		if err := s.emit(ctx, tx, enums.EventTransferLinesUpdated, header.ID, input.Actor, now, payloads.TransferLinesUpdatedEvent{
			TransferID:    header.ID,
			Code:          header.Code,
			TotalItems:    totalItems,
			TotalQuantity: totalQty,
			Lines:         linePayloads(lines),
		}); err != nil {
			return err
		}
		detail = newDetail(*header, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithTransferID(s.logg.WithActor(ctx, input.Actor), detail.ID.String()), map[string]any{
			"total_items":    detail.TotalItems,
			"total_quantity": detail.TotalQuantity,
		})
		s.logg.Info(logCtx, "transfer.lines_updated")
	}
	return detail, nil
}

func (s *service) TransitionStatus(ctx context.Context, input TransitionInput) (detail *TransferDetail, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, opTransition, started, err) }()

	if input.TransferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", input.Status))
	}

	var (
		from  enums.TransferStatus
		moved int
		rows  int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		header, err := s.lockTransfer(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}
		from = header.Status
		if !CanTransition(from, input.Status) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move transfer from %s to %s", from, input.Status)).
				WithDetails(map[string]any{
					"transfer_id": header.ID.String(),
					"from":        from,
					"to":          input.Status,
				})
		}

		lines, err := repo.FindLines(ctx, header.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load transfer lines")
		}

		now := s.clock()
		run := &transitionRun{
			svc:    s,
			tx:     tx,
			repo:   repo,
			ledger: s.ledger.WithTx(tx),
			log:    s.movements.WithTx(tx),
			header: header,
			lines:  lines,
			input:  input,
			now:    now,
		}
		switch effectOf(from, input.Status) {
		case effectComplete:
			err = run.complete(ctx)
		case effectReverse:
			err = run.reverse(ctx)
		}
		if err != nil {
			return err
		}
		moved, rows = run.units, run.movements

		if err := repo.UpdateHeader(ctx, header.ID, map[string]any{
			"status":     input.Status,
			"updated_by": input.Actor,
			"updated_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update transfer status")
		}
		header.Status = input.Status
		header.UpdatedBy = input.Actor
		header.UpdatedAt = now

		changed := payloads.TransferStatusChangedEvent{
			TransferID:         header.ID,
			Code:               header.Code,
			FromStatus:         from,
			ToStatus:           input.Status,
			MovementsRecorded:  rows,
			QuantityTransacted: moved,
			ChangedAt:          now,
		}
		if input.Notes != nil {
			changed.Notes = *input.Notes
		}
		if err := s.emit(ctx, tx, enums.EventTransferStatusChanged, header.ID, input.Actor, now, changed); err != nil {
			return err
		}
		detail = newDetail(*header, run.lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch effectOf(from, input.Status) {
	case effectComplete:
		s.metrics.AddUnits(metrics.DirectionOut, moved)
	case effectReverse:
		s.metrics.AddUnits(metrics.DirectionReversal, moved)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithTransferID(s.logg.WithActor(ctx, input.Actor), detail.ID.String()), map[string]any{
			"from":      from,
			"to":        input.Status,
			"units":     moved,
			"movements": rows,
		})
		s.logg.Info(logCtx, "transfer.status_changed")
	}
	return detail, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TransferDetail, error) {
	header, err := s.findTransfer(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.FindLines(ctx, header.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load transfer lines")
	}
	return newDetail(*header, lines), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*TransferList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", *filters.Status))
	}
	if filters.CreatedFrom != nil && filters.CreatedTo != nil && filters.CreatedFrom.After(*filters.CreatedTo) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list transfers")
	}
	out := &TransferList{Transfers: make([]TransferSummary, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		out.Transfers = append(out.Transfers, newSummary(row))
	}
	return out, nil
}

func (s *service) Movements(ctx context.Context, id uuid.UUID) ([]inventory.MovementDTO, error) {
	header, err := s.findTransfer(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.movements.ListByReference(ctx, header.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list transfer movements")
	}
	return inventory.NewMovementDTOs(rows), nil
}

// checkAvailability verifies every line item exists and the source holds
// enough of it, returning the stock read per item.
func (s *service) checkAvailability(ctx context.Context, cat catalog.Repository, ledger inventory.Ledger, sourceID uuid.UUID, lines []LineInput) (map[uuid.UUID]int, error) {
	ids := itemIDs(lines)
	items, err := cat.FindItems(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load items")
	}
	for _, line := range lines {
		if _, ok := items[line.ItemID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown item").
				WithDetails(map[string]any{"item_id": line.ItemID.String()})
		}
	}

	stock, err := ledger.GetStocks(ctx, sourceID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "read source stock")
	}
	for _, line := range lines {
		if available := stock[line.ItemID]; line.Quantity > available {
			return nil, insufficient(items[line.ItemID], sourceID, available, line.Quantity)
		}
	}
	return stock, nil
}

func (s *service) lockTransfer(ctx context.Context, repo Repository, id uuid.UUID) (*models.TransferRequest, error) {
	header, err := repo.FindForUpdate(ctx, id)
	if err != nil {
		return nil, transferLookupError(id, err)
	}
	return header, nil
}

func (s *service) findTransfer(ctx context.Context, repo Repository, id uuid.UUID) (*models.TransferRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	header, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, transferLookupError(id, err)
	}
	return header, nil
}

func transferLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found").
			WithDetails(map[string]any{"transfer_id": id.String()})
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load transfer")
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, transferID uuid.UUID, actor string, at time.Time, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateTransferRequest,
		AggregateID:   transferID,
		Actor:         &outbox.ActorRef{Actor: actor},
		Data:          data,
		OccurredAt:    at,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "queue transfer event")
	}
	return nil
}

// finish records metrics and logs failures for one operation.
func (s *service) finish(ctx context.Context, op string, started time.Time, err error) {
	s.metrics.Observe(op, err, time.Since(started))
	if err == nil || s.logg == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"operation":  op,
		"error_code": code,
	})
	switch code {
	case pkgerrors.CodeReversal, pkgerrors.CodePersistence, pkgerrors.CodeInternal:
		s.logg.Error(logCtx, "transfer operation failed", err)
	default:
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "transfer operation rejected")
	}
}

func insufficient(item models.Item, locationID uuid.UUID, available, requested int) *pkgerrors.Error {
	err := pkgerrors.InsufficientStock(item.ID.String(), locationID.String(), available, requested)
	if details, ok := err.Details().(map[string]any); ok {
		details["item_code"] = item.Code
	}
	return err
}

func buildLines(transferID uuid.UUID, inputs []LineInput, snapshot map[uuid.UUID]int, now time.Time) []models.TransferLine {
	lines := make([]models.TransferLine, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, models.TransferLine{
			ID:                uuid.New(),
			TransferID:        transferID,
			ItemID:            in.ItemID,
			RequestedQuantity: in.Quantity,
			AvailableSnapshot: snapshot[in.ItemID],
			Remarks:           in.Remarks,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return lines
}

func linePayloads(lines []models.TransferLine) []payloads.TransferLine {
	out := make([]payloads.TransferLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, payloads.TransferLine{
			ItemID:            line.ItemID,
			RequestedQuantity: line.RequestedQuantity,
			AvailableSnapshot: line.AvailableSnapshot,
		})
	}
	return out
}
