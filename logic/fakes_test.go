package logic

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"aimage-backend/fault"
	"aimage-backend/models"
	"aimage-backend/pkg"
)

// memLedger implements LedgerStore and GenerationStore over an
// in-memory account map. It mirrors the database guarantee the real
// DAOs rely on: the re-checked debit and every record write of a commit
// happen under one lock, all or nothing.
type memLedger struct {
	mu         sync.Mutex
	coins      map[uint64]int64
	minSeen    map[uint64]int64
	entries    []models.CoinTransaction
	images     []*models.Image
	reserves   int
	commitErr  error
	commitHook func()
}

func newMemLedger() *memLedger {
	return &memLedger{
		coins:   make(map[uint64]int64),
		minSeen: make(map[uint64]int64),
	}
}

func (m *memLedger) setBalance(userID uint64, coins int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins[userID] = coins
	m.minSeen[userID] = coins
}

func (m *memLedger) observe(userID uint64) {
	if m.coins[userID] < m.minSeen[userID] {
		m.minSeen[userID] = m.coins[userID]
	}
}

func (m *memLedger) GetBalance(userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coins, ok := m.coins[userID]
	if !ok {
		return 0, fault.ErrUserNotFound
	}
	return coins, nil
}

func (m *memLedger) Reserve(userID uint64, amount int64) (bool, error) {
	m.mu.Lock()
	m.reserves++
	m.mu.Unlock()
	balance, err := m.GetBalance(userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (m *memLedger) reserveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserves
}

func (m *memLedger) Credit(userID uint64, amount int64, kind, detail string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coins[userID]; !ok {
		return 0, fault.ErrUserNotFound
	}
	m.coins[userID] += amount
	m.entries = append(m.entries, models.CoinTransaction{
		UserID: userID, Kind: kind, Amount: amount, Detail: detail,
	})
	return m.coins[userID], nil
}

func (m *memLedger) Debit(userID uint64, amount int64, detail string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coins, ok := m.coins[userID]
	if !ok {
		return 0, fault.ErrUserNotFound
	}
	if coins < amount {
		return 0, fault.ErrInsufficientCoins
	}
	m.coins[userID] -= amount
	m.observe(userID)
	m.entries = append(m.entries, models.CoinTransaction{
		UserID: userID, Kind: models.TxKindSpend, Amount: -amount, Detail: detail,
	})
	return m.coins[userID], nil
}

func (m *memLedger) CommitGeneration(ctx context.Context, userID uint64, cost int64, detail string, images []*models.Image) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitHook != nil {
		m.commitHook()
	}
	if m.commitErr != nil {
		return 0, m.commitErr
	}
	if m.coins[userID] < cost {
		return 0, fault.ErrInsufficientCoins
	}
	m.coins[userID] -= cost
	m.observe(userID)
	m.entries = append(m.entries, models.CoinTransaction{
		UserID: userID, Kind: models.TxKindSpend, Amount: -cost, Detail: detail,
	})
	m.images = append(m.images, images...)
	return m.coins[userID], nil
}

func (m *memLedger) ListEntries(userID uint64, page, limit int) ([]models.CoinTransaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.CoinTransaction
	for _, e := range m.entries {
		if e.UserID == userID {
			all = append(all, e)
		}
	}
	// newest first, like the production query
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memLedger) committedImages() []*models.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Image, len(m.images))
	copy(out, m.images)
	return out
}

func (m *memLedger) entriesFor(userID uint64) []models.CoinTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CoinTransaction
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// fakeGenerator stands in for the retrying provider client
type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	artifacts []pkg.Artifact
	err       error
	lastReq   pkg.GenerateRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req pkg.GenerateRequest) ([]pkg.Artifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return g.artifacts, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memBlobs is an in-memory pkg.BlobStore
type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	puts      int
	failPutAt int // fail the n-th Put (1-based), 0 disables
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (b *memBlobs) Put(name string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.failPutAt > 0 && b.puts == b.failPutAt {
		return "", fault.ErrStorageWriteFailed
	}
	ref := name + ".png"
	b.blobs[ref] = data
	return ref, nil
}

func (b *memBlobs) Open(ref string) (io.ReadCloser, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[ref]
	if !ok {
		return nil, 0, fault.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (b *memBlobs) Delete(ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, ref)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// memImages is an in-memory ImageStore with the same winner-takes-all
// consumed transition as the gorm DAO
type memImages struct {
	mu     sync.Mutex
	images map[uuid.UUID]*models.Image
}

func newMemImages() *memImages {
	return &memImages{images: make(map[uuid.UUID]*models.Image)}
}

func (m *memImages) add(img *models.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ID] = img
}

func (m *memImages) GetUserImage(userID uint64, id uuid.UUID) (*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok || img.UserID != userID {
		return nil, fault.ErrArtifactNotFound
	}
	return img, nil
}

func (m *memImages) ListImages(userID uint64, page, limit int) ([]models.Image, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Image
	for _, img := range m.images {
		if img.UserID == userID {
			out = append(out, *img)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memImages) ConsumeImage(id uuid.UUID) (*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok {
		return nil, fault.ErrArtifactNotFound
	}
	if img.DownloadState != models.DownloadAvailable {
		return nil, fault.ErrArtifactConsumed
	}
	img.DownloadState = models.DownloadConsumed
	return img, nil
}

func (m *memImages) DeleteImage(userID uint64, id uuid.UUID) (*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok || img.UserID != userID {
		return nil, fault.ErrArtifactNotFound
	}
	delete(m.images, id)
	return img, nil
}

func pngArtifact(seed int64) pkg.Artifact {
	return pkg.Artifact{
		Base64:       "cG5nLWJ5dGVz", // "png-bytes"
		Seed:         seed,
		FinishReason: "SUCCESS",
	}
}

func artifacts(n int) []pkg.Artifact {
	out := make([]pkg.Artifact, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pngArtifact(int64(i)))
	}
	return out
}
