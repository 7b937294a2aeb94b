package experience

import (
	"context"
	"fmt"
	"sync"

	"nfcExperience/domain"
)

type fakeGateway struct {
	mu        sync.Mutex
	settings  map[string]string
	products  map[string]domain.Product
	campaigns map[int64]domain.Campaign
	units     map[int64]domain.Unit
	scans     map[int64]domain.Scan

	calls     int
	scanReads int
	upserts   int

	readErr   error
	upsertErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		settings:  map[string]string{},
		products:  map[string]domain.Product{},
		campaigns: map[int64]domain.Campaign{},
		units:     map[int64]domain.Unit{},
		scans:     map[int64]domain.Scan{},
	}
}

func productKey(prd int64, brand string) string {
	return fmt.Sprintf("%d/%s", prd, brand)
}

func (f *fakeGateway) addProduct(p domain.Product) {
	f.products[productKey(p.Prd, p.Brand)] = p
}

func (f *fakeGateway) GetSetting(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.readErr != nil {
		return "", false, f.readErr
	}
	v, ok := f.settings[key]
	return v, ok, nil
}

func (f *fakeGateway) FindUnitWithRelations(ctx context.Context, uid int64) (domain.Unit, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.readErr != nil {
		return domain.Unit{}, false, f.readErr
	}
	u, ok := f.units[uid]
	if !ok {
		return domain.Unit{}, false, nil
	}
	u.Product = f.products[productKey(u.Prd, u.Brand)]
	u.Campaign = f.campaigns[u.Cc]
	return u, true, nil
}

func (f *fakeGateway) FindProduct(ctx context.Context, prd int64, brand string) (domain.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.readErr != nil {
		return domain.Product{}, false, f.readErr
	}
	p, ok := f.products[productKey(prd, brand)]
	return p, ok, nil
}

func (f *fakeGateway) FindCampaign(ctx context.Context, cc int64) (domain.Campaign, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.readErr != nil {
		return domain.Campaign{}, false, f.readErr
	}
	c, ok := f.campaigns[cc]
	return c, ok, nil
}

func (f *fakeGateway) FindScan(ctx context.Context, uid int64) (domain.Scan, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.scanReads++
	if f.readErr != nil {
		return domain.Scan{}, false, f.readErr
	}
	s, ok := f.scans[uid]
	return s, ok, nil
}

func (f *fakeGateway) UpsertScan(ctx context.Context, scan domain.Scan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	existing, ok := f.scans[scan.UID]
	if !ok {
		f.scans[scan.UID] = scan
		return nil
	}
	existing.ScanCount++
	existing.LastScanAt = scan.LastScanAt
	f.scans[scan.UID] = existing
	return nil
}

type fakePublisher struct {
	events []ScanEvent
	err    error
}

func (p *fakePublisher) PublishScan(ctx context.Context, event ScanEvent) error {
	p.events = append(p.events, event)
	return p.err
}
