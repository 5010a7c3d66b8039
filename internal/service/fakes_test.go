package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"weedx-backend/internal/model"
	"weedx-backend/internal/token"
)

type fakeUsers struct {
	byID       map[int64]model.User
	farms      map[int64]model.Farm
	registered []model.Registration
	touched    []int64
	nextID     int64
	profiles   []model.ProfilePatch
	farmPatch  []model.FarmPatch
	createErr  error
	lookupErr  error
	touchErr   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]model.User{}, farms: map[int64]model.Farm{}, nextID: 1}
}

func (f *fakeUsers) add(u model.User) {
	f.byID[u.ID] = u
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	if f.lookupErr != nil {
		return model.User{}, f.lookupErr
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	if f.lookupErr != nil {
		return model.User{}, f.lookupErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUsers) CreateRegistration(_ context.Context, reg model.Registration) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	id := f.nextID
	f.nextID++
	reg.User.ID = id
	f.byID[id] = reg.User
	f.registered = append(f.registered, reg)
	return id, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return f.touchErr
}

func (f *fakeUsers) FarmByUser(_ context.Context, userID int64) (*model.Farm, error) {
	farm, ok := f.farms[userID]
	if !ok {
		return nil, nil
	}
	return &farm, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, patch model.ProfilePatch) error {
	if _, ok := f.byID[id]; !ok {
		return model.ErrUserNotFound
	}
	f.profiles = append(f.profiles, patch)
	return nil
}

func (f *fakeUsers) UpdateFarm(_ context.Context, userID int64, patch model.FarmPatch) (bool, error) {
	farm, ok := f.farms[userID]
	if !ok {
		return false, nil
	}
	if patch.Name != nil {
		farm.Name = *patch.Name
	}
	if patch.Location != nil {
		farm.Location = *patch.Location
	}
	if patch.Size != nil {
		farm.Size = *patch.Size
	}
	if len(patch.CropTypes) > 0 {
		farm.CropTypes = patch.CropTypes
	}
	f.farms[userID] = farm
	f.farmPatch = append(f.farmPatch, patch)
	return true, nil
}

func (f *fakeUsers) CreateFarm(_ context.Context, farm model.Farm) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	farm.ID = int64(len(f.farms) + 100)
	f.farms[farm.UserID] = farm
	return farm.ID, nil
}

type fakeSettings struct {
	rows    map[int64]model.Settings
	created []int64
	getErr  error
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: map[int64]model.Settings{}}
}

func (f *fakeSettings) Get(_ context.Context, userID int64) (model.Settings, error) {
	if f.getErr != nil {
		return model.Settings{}, f.getErr
	}
	s, ok := f.rows[userID]
	if !ok {
		return model.Settings{}, model.ErrSettingsNotFound
	}
	return s, nil
}

func (f *fakeSettings) Update(_ context.Context, userID int64, patch model.SettingsPatch) (bool, error) {
	s, ok := f.rows[userID]
	if !ok {
		return false, nil
	}
	if patch.NotificationsEnabled != nil {
		s.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.EmailAlerts != nil {
		s.EmailAlerts = *patch.EmailAlerts
	}
	if patch.Language != nil {
		s.Language = *patch.Language
	}
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}
	f.rows[userID] = s
	return true, nil
}

func (f *fakeSettings) Create(_ context.Context, userID int64, s model.Settings) error {
	f.rows[userID] = s
	f.created = append(f.created, userID)
	return nil
}

type fakeDevices struct {
	active map[string]model.DeviceToken
	err    error
}

func (f *fakeDevices) Register(_ context.Context, t model.DeviceToken) error {
	if f.err != nil {
		return f.err
	}
	if f.active == nil {
		f.active = map[string]model.DeviceToken{}
	}
	f.active[t.Token] = t
	return nil
}

func (f *fakeDevices) Deactivate(_ context.Context, tok string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.active, tok)
	return nil
}

type fakeAlerts struct {
	rows      []model.Alert
	lastLimit int
	lastPage  int
	clock     time.Time
}

func (f *fakeAlerts) Recent(_ context.Context, limit int) ([]model.Alert, error) {
	f.lastLimit = limit
	if limit > len(f.rows) {
		limit = len(f.rows)
	}
	return f.rows[:limit], nil
}

func (f *fakeAlerts) Page(_ context.Context, page, limit int) ([]model.Alert, int, error) {
	f.lastPage, f.lastLimit = page, limit
	start := (page - 1) * limit
	if start > len(f.rows) {
		start = len(f.rows)
	}
	end := start + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[start:end], len(f.rows), nil
}

func (f *fakeAlerts) Create(_ context.Context, a model.Alert) (model.Alert, error) {
	a.ID = int64(len(f.rows) + 1)
	a.CreatedAt = f.clock
	f.rows = append([]model.Alert{a}, f.rows...)
	return a, nil
}

type fakeDetections struct {
	rows         map[int64]model.Detection
	stats        model.DetectionStats
	trend        []model.TrendPoint
	distribution []model.DistributionEntry

	lastFilter model.DetectionFilter
	lastDays   int
	statsFor   []*int64
	reportFor  []*int64
}

func (f *fakeDetections) Summary(_ context.Context) ([]model.WeedCount, error) {
	counts := map[string]int{}
	for _, d := range f.rows {
		counts[d.WeedType]++
	}
	out := make([]model.WeedCount, 0, len(counts))
	for weed, n := range counts {
		out = append(out, model.WeedCount{WeedType: weed, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].WeedType < out[j].WeedType
	})
	return out, nil
}

func (f *fakeDetections) Recent(_ context.Context, limit int) ([]model.Detection, error) {
	out := make([]model.Detection, 0, len(f.rows))
	for _, d := range f.rows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDetections) List(_ context.Context, filter model.DetectionFilter) ([]model.Detection, error) {
	f.lastFilter = filter
	out := make([]model.Detection, 0, len(f.rows))
	for _, d := range f.rows {
		if filter.UserID != nil && (d.UserID == nil || *d.UserID != *filter.UserID) {
			continue
		}
		if filter.WeedType != "" && d.WeedType != filter.WeedType {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if filter.Offset > 0 {
		out = out[min(filter.Offset, len(out)):]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeDetections) Stats(_ context.Context, userID *int64) (model.DetectionStats, error) {
	f.statsFor = append(f.statsFor, userID)
	return f.stats, nil
}

func (f *fakeDetections) Trend(_ context.Context, days int, userID *int64) ([]model.TrendPoint, error) {
	f.lastDays = days
	f.reportFor = append(f.reportFor, userID)
	return f.trend, nil
}

func (f *fakeDetections) Distribution(_ context.Context, userID *int64) ([]model.DistributionEntry, error) {
	f.reportFor = append(f.reportFor, userID)
	return f.distribution, nil
}

func (f *fakeDetections) FindByID(_ context.Context, id int64) (model.Detection, error) {
	d, ok := f.rows[id]
	if !ok {
		return model.Detection{}, model.ErrDetectionNotFound
	}
	return d, nil
}

func (f *fakeDetections) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return model.ErrDetectionNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRobot struct {
	status *model.RobotStatus
}

func (f fakeRobot) Latest(_ context.Context) (model.RobotStatus, bool, error) {
	if f.status == nil {
		return model.RobotStatus{}, false, nil
	}
	return *f.status, true, nil
}

type fakeSessions struct {
	totals  model.SessionTotals
	filters []model.SessionFilter
}

func (f *fakeSessions) Totals(_ context.Context, filter model.SessionFilter) (model.SessionTotals, error) {
	f.filters = append(f.filters, filter)
	return f.totals, nil
}

type fakeTelemetry struct {
	report    *model.Telemetry
	activity  []model.ActivityEntry
	lastLimit int
}

func (f *fakeTelemetry) Telemetry(_ context.Context) (model.Telemetry, bool, error) {
	if f.report == nil {
		return model.Telemetry{}, false, nil
	}
	return *f.report, true, nil
}

func (f *fakeTelemetry) Activity(_ context.Context, limit int) ([]model.ActivityEntry, error) {
	f.lastLimit = limit
	out := make([]model.ActivityEntry, 0, len(f.activity))
	out = append(out, f.activity...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestCodec(now time.Time) *token.Codec {
	codec, err := token.NewCodec("test-secret", "weedx-backend", token.DefaultTTL)
	if err != nil {
		panic(err)
	}
	codec.SetClock(func() time.Time { return now })
	return codec
}
