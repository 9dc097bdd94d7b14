package service_test

import (
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/attachment"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/infra"
	"github.com/HanjuJo/nexo-v1/internal/repository"
	"github.com/HanjuJo/nexo-v1/internal/service"
	"github.com/HanjuJo/nexo-v1/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Test environment ─────────────────────────────────────────────────────────

type env struct {
	db      *gorm.DB
	dir     string
	store   *attachment.Store
	users   repository.UserRepository
	clients repository.ClientRepository
	items   repository.ItemRepository

	quotations    service.QuotationService
	contracts     service.ContractService
	installations service.InstallationService
	consultations service.ConsultationService
	clientSvc     service.ClientService
	itemSvc       service.ItemService
	inventory     service.InventoryService
	accounts      service.AccountService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := attachment.NewStore(attachment.Config{Root: dir, URLPrefix: "/uploads", MaxBytes: 1 << 20})
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	clients := repository.NewClientRepository(db)
	items := repository.NewItemRepository(db)
	consultations := repository.NewConsultationRepository(db)
	quotations := repository.NewQuotationRepository(db)
	contracts := repository.NewContractRepository(db)
	installations := repository.NewInstallationRepository(db)
	inventory := repository.NewInventoryRepository(db)
	pdf := infra.NewPDFRenderer("")

	return &env{
		db:      db,
		dir:     dir,
		store:   store,
		users:   users,
		clients: clients,
		items:   items,

		quotations:    service.NewQuotationService(quotations, items, clients, consultations, pdf),
		contracts:     service.NewContractService(contracts, items, clients, quotations, pdf),
		installations: service.NewInstallationService(installations, contracts, clients, users, store),
		consultations: service.NewConsultationService(consultations, clients),
		clientSvc:     service.NewClientService(clients),
		itemSvc:       service.NewItemService(items, nil, 0),
		inventory:     service.NewInventoryService(inventory, items),
		accounts:      service.NewAccountService(users),
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func line(itemID string, qty int, price string) dto.LineItemRequest {
	return dto.LineItemRequest{ItemID: itemID, Quantity: qty, UnitPrice: d(price)}
}

func requireKind(t *testing.T, err error, kind apierror.Kind) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	e := apierror.From(err)
	require.Equal(t, kind, e.Kind, "unexpected error: %v", err)
	return e
}

// smallest PNG header accepted by content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
