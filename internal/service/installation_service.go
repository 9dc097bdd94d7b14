package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/attachment"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/lifecycle"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Upload is one attachment of a completion request.
type Upload struct {
	Slot int
	Body io.Reader
}

// InstallationService defines the business logic contract for installations
// and service visits.
type InstallationService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateInstallationRequest) (*dto.InstallationResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.InstallationResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.InstallationFilter) (*dto.ListResponse[dto.InstallationResponse], error)
	ClientHistory(ctx context.Context, who identity.Identity, clientID uuid.UUID, p dto.Pagination) (*dto.ListResponse[dto.InstallationResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateInstallationRequest) (*dto.InstallationResponse, error)
	Complete(ctx context.Context, who identity.Identity, id uuid.UUID, resultText string, uploads []Upload) (*dto.InstallationResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type installationService struct {
	repo      repository.InstallationRepository
	contracts repository.ContractRepository
	clients   repository.ClientRepository
	users     repository.UserRepository
	store     *attachment.Store
	now       func() time.Time
}

func NewInstallationService(
	repo repository.InstallationRepository,
	contracts repository.ContractRepository,
	clients repository.ClientRepository,
	users repository.UserRepository,
	store *attachment.Store,
) InstallationService {
	return &installationService{
		repo:      repo,
		contracts: contracts,
		clients:   clients,
		users:     users,
		store:     store,
		now:       time.Now,
	}
}

func (s *installationService) Create(ctx context.Context, who identity.Identity, req dto.CreateInstallationRequest) (*dto.InstallationResponse, error) {
	if !who.Admin() {
		return nil, apierror.Forbidden("only administrators can schedule installations")
	}
	contractID, err := parseID("contract_id", req.ContractID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	technicianID, err := parseID("technician_id", req.TechnicianID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateKind(req.InstallationType); err != nil {
		return nil, err
	}
	status, err := lifecycle.StatusOrDefault(lifecycle.DocInstallation, req.Status)
	if err != nil {
		return nil, err
	}
	if status == lifecycle.InstallationCompleted {
		return nil, completionRequired()
	}
	scheduled, err := parseDate("scheduled_date", req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if err := s.requireTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	inst := &model.Installation{
		ContractID:       contractID,
		ClientID:         clientID,
		TechnicianID:     technicianID,
		InstallationType: req.InstallationType,
		Status:           status,
		ScheduledDate:    scheduled,
		Notes:            req.Notes,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.requireContractClient(tx, contractID, clientID); err != nil {
			return err
		}
		if err := requireClient(tx, s.clients, clientID); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, inst)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, inst.ID)
}

func (s *installationService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.InstallationResponse, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "installation")
	}
	if err := policy.Authorize(policy.Resolve(who, policy.ResourceInstallation), inst.TechnicianID, "installation"); err != nil {
		return nil, err
	}
	return toInstallationResponse(inst), nil
}

func (s *installationService) List(ctx context.Context, who identity.Identity, filter dto.InstallationFilter) (*dto.ListResponse[dto.InstallationResponse], error) {
	filter.Normalize()
	if filter.Status != "" {
		if err := lifecycle.ValidateStatus(lifecycle.DocInstallation, filter.Status); err != nil {
			return nil, err
		}
	}
	if filter.ClientID != "" {
		id, err := parseID("client_id", filter.ClientID)
		if err != nil {
			return nil, err
		}
		filter.ClientID = id.String()
	}
	rows, total, err := s.repo.List(ctx, policy.Resolve(who, policy.ResourceInstallation), filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.InstallationResponse, len(rows))
	for i := range rows {
		data[i] = *toInstallationResponse(&rows[i])
	}
	return &dto.ListResponse[dto.InstallationResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

// ClientHistory lists the installations of one client visible to the caller.
func (s *installationService) ClientHistory(ctx context.Context, who identity.Identity, clientID uuid.UUID, p dto.Pagination) (*dto.ListResponse[dto.InstallationResponse], error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, notFoundAs(apierror.From(err), "client")
	}
	return s.List(ctx, who, dto.InstallationFilter{ClientID: clientID.String(), Pagination: p})
}

// Update is the generic edit path. It cannot complete an installation;
// moving a completed installation back to another status clears its
// completion data and attachments.
func (s *installationService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateInstallationRequest) (*dto.InstallationResponse, error) {
	scope := policy.Resolve(who, policy.ResourceInstallation)

	var reassignTo *uuid.UUID
	if req.TechnicianID != nil {
		techID, err := parseID("technician_id", *req.TechnicianID)
		if err != nil {
			return nil, err
		}
		reassignTo = &techID
		// non-admins are refused inside the transaction without learning
		// anything about the target account
		if who.Admin() {
			if err := s.requireTechnician(ctx, techID); err != nil {
				return nil, err
			}
		}
	}

	var stale []string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inst, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "installation")
		}
		if err := policy.Authorize(scope, inst.TechnicianID, "installation"); err != nil {
			return err
		}

		update, err := parseOptionalID("contract_id", req.ContractID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.KeepLineage("contract_id", &inst.ContractID, update); err != nil {
			return err
		}
		if req.ClientID != nil {
			clientID, err := parseID("client_id", *req.ClientID)
			if err != nil {
				return err
			}
			if clientID != inst.ClientID {
				if err := s.requireContractClient(tx, inst.ContractID, clientID); err != nil {
					return err
				}
				if err := requireClient(tx, s.clients, clientID); err != nil {
					return err
				}
				inst.ClientID = clientID
			}
		}
		if reassignTo != nil && *reassignTo != inst.TechnicianID {
			if !who.Admin() {
				return apierror.Forbidden("only administrators can reassign installations")
			}
			inst.TechnicianID = *reassignTo
		}
		if req.InstallationType != nil {
			if err := lifecycle.ValidateKind(*req.InstallationType); err != nil {
				return err
			}
			inst.InstallationType = *req.InstallationType
		}
		if req.Status != nil && *req.Status != inst.Status {
			if err := lifecycle.ValidateStatus(lifecycle.DocInstallation, *req.Status); err != nil {
				return err
			}
			if *req.Status == lifecycle.InstallationCompleted {
				return completionRequired()
			}
			if inst.Status == lifecycle.InstallationCompleted {
				stale = inst.Attachments()
				inst.CompletedAt = nil
				inst.ResultText = nil
				inst.Attachment1URL = nil
				inst.Attachment2URL = nil
			}
			inst.Status = *req.Status
		}
		if req.ScheduledDate != nil {
			if inst.ScheduledDate, err = parseDate("scheduled_date", req.ScheduledDate); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			inst.Notes = req.Notes
		}
		return s.repo.UpdateTx(tx, inst)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	s.removeFiles(id, stale)
	return s.load(ctx, id)
}

// Complete finalizes an installation. The caller must be the assigned
// technician or an administrator. Up to two attachments are staged before
// the transaction and promoted to their slot files as its last step.
func (s *installationService) Complete(ctx context.Context, who identity.Identity, id uuid.UUID, resultText string, uploads []Upload) (*dto.InstallationResponse, error) {
	scope := policy.Resolve(who, policy.ResourceInstallation)

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "installation")
	}
	if err := policy.Authorize(scope, inst.TechnicianID, "installation"); err != nil {
		return nil, err
	}
	resultText = strings.TrimSpace(resultText)
	if resultText == "" {
		return nil, apierror.Validation("result text is required", map[string]string{"result_text": "required"})
	}
	if len(uploads) > attachment.Slots {
		return nil, apierror.Validation(fmt.Sprintf("at most %d attachments", attachment.Slots), nil)
	}

	staged := make([]*attachment.Staged, attachment.Slots)
	defer func() { s.store.Discard(staged...) }()
	for _, u := range uploads {
		if u.Slot < 1 || u.Slot > attachment.Slots || staged[u.Slot-1] != nil {
			return nil, apierror.Validation("invalid attachment slot",
				map[string]string{fmt.Sprintf("attachment%d", u.Slot): "slot"})
		}
		st, err := s.store.Stage(u.Slot, u.Body)
		if err != nil {
			return nil, apierror.From(err)
		}
		staged[u.Slot-1] = st
	}

	var stale []string
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inst, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "installation")
		}
		// the assignment may have changed since the first read
		if err := policy.Authorize(scope, inst.TechnicianID, "installation"); err != nil {
			return err
		}

		previous := []*string{inst.Attachment1URL, inst.Attachment2URL}
		refs := make([]*string, attachment.Slots)
		for i, st := range staged {
			if st != nil {
				ref := s.store.Ref(id, st)
				refs[i] = &ref
			} else if previous[i] != nil {
				stale = append(stale, *previous[i])
			}
		}

		completedAt := s.now().UTC()
		inst.Status = lifecycle.InstallationCompleted
		inst.CompletedAt = &completedAt
		inst.ResultText = &resultText
		inst.Attachment1URL = refs[0]
		inst.Attachment2URL = refs[1]
		if err := s.repo.UpdateTx(tx, inst); err != nil {
			return err
		}

		for _, st := range staged {
			if st == nil {
				continue
			}
			if _, err := s.store.Promote(id, st); err != nil {
				return apierror.Internal("store attachment", err)
			}
		}
		return nil
	})
	if err != nil {
		stale = nil
		return nil, apierror.From(err)
	}

	s.removeFiles(id, stale)
	log.Info().
		Str("installation_id", id.String()).
		Str("completed_by", who.UserID.String()).
		Int("attachments", len(uploads)).
		Msg("installation completed")
	return s.load(ctx, id)
}

// Delete removes an installation and its attachment files. Administrators only.
func (s *installationService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	if !who.Admin() {
		return apierror.Forbidden("only administrators can delete installations")
	}
	var files []string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inst, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "installation")
		}
		files = inst.Attachments()
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return apierror.From(err)
	}
	s.removeFiles(id, files)
	return nil
}

func (s *installationService) requireTechnician(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return apierror.Validation("technician does not exist", map[string]string{"technician_id": "exists"})
		}
		return apierror.From(err)
	}
	if !u.IsActive {
		return apierror.Validation("technician account is inactive", map[string]string{"technician_id": "active"})
	}
	return nil
}

func (s *installationService) removeFiles(id uuid.UUID, refs []string) {
	for _, ref := range refs {
		if err := s.store.Remove(ref); err != nil {
			log.Warn().Err(err).Str("installation_id", id.String()).Str("ref", ref).Msg("remove attachment")
		}
	}
}

func (s *installationService) load(ctx context.Context, id uuid.UUID) (*dto.InstallationResponse, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.From(err)
	}
	return toInstallationResponse(inst), nil
}

func completionRequired() error {
	return apierror.Validation(
		"installations are completed through the completion endpoint",
		map[string]string{"status": "completed"},
	)
}

// requireContractClient checks that the contract exists and belongs to clientID.
func (s *installationService) requireContractClient(tx *gorm.DB, contractID, clientID uuid.UUID) error {
	c, err := s.contracts.FindByIDTx(tx, contractID)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return apierror.Validation("contract does not exist", map[string]string{"contract_id": "exists"})
		}
		return err
	}
	if c.ClientID != clientID {
		return apierror.Validation("client does not match the contract", map[string]string{"client_id": "contract_client"})
	}
	return nil
}

func toInstallationResponse(i *model.Installation) *dto.InstallationResponse {
	r := &dto.InstallationResponse{
		ID:               i.ID.String(),
		ContractID:       i.ContractID.String(),
		ClientID:         i.ClientID.String(),
		TechnicianID:     i.TechnicianID.String(),
		InstallationType: i.InstallationType,
		Status:           i.Status,
		ScheduledDate:    formatDate(i.ScheduledDate),
		CompletedAt:      formatTimePtr(i.CompletedAt),
		ResultText:       i.ResultText,
		Attachment1URL:   i.Attachment1URL,
		Attachment2URL:   i.Attachment2URL,
		Notes:            i.Notes,
		CreatedAt:        formatTime(i.CreatedAt),
		UpdatedAt:        formatTime(i.UpdatedAt),
	}
	if i.Client != nil {
		r.ClientName = i.Client.Name
	}
	return r
}
