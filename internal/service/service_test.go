package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dragonmail/dragonmail/internal/auth"
	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// memActivity is an in-memory ActivityRepository.
type memActivity struct {
	mu      sync.Mutex
	records []model.ActivityRecord
}

func (m *memActivity) Append(ctx context.Context, rec model.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memActivity) List(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ActivityRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if filter.Channel != "" && rec.Channel != filter.Channel {
			continue
		}
		if filter.User != "" && rec.User != filter.User {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memActivity) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

// memTasks is an in-memory TaskRepository.
type memTasks struct {
	mu    sync.Mutex
	tasks []model.ScheduledTask
}

func (m *memTasks) Add(ctx context.Context, task *model.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == task.ID {
			return repository.ErrDuplicate
		}
	}
	m.tasks = append(m.tasks, *task)
	return nil
}

func (m *memTasks) Get(ctx context.Context, id string) (*model.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			task := t
			return &task, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTasks) List(ctx context.Context) ([]model.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScheduledTask(nil), m.tasks...), nil
}

func (m *memTasks) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memTasks) Due(ctx context.Context, now time.Time) ([]model.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []model.ScheduledTask
	for _, t := range m.tasks {
		if t.Due(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (m *memTasks) MarkCompleted(ctx context.Context, id string, executedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Status = model.TaskStatusCompleted
			m.tasks[i].ExecutedAt = &executedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, len(m.users))
	for i, u := range m.users {
		u.PasswordHash = ""
		out[i] = u
	}
	return out, nil
}

func (m *memUsers) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Username == username {
			m.users[i].PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Username == username {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// fakeSubmitter records submissions and optionally fails some.
type fakeSubmitter struct {
	mu     sync.Mutex
	sent   []dispatch.Email
	failFn func(msg dispatch.Email) error
}

func (f *fakeSubmitter) Submit(ctx context.Context, transport model.TransportConfig, msg dispatch.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFn != nil {
		if err := f.failFn(msg); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

var testTransport = model.TransportConfig{
	Name: "Work", Host: "smtp.example.com", Port: 587,
	Email: "ops@example.com", Password: "secret", UseTLS: true,
}

func newSendService(activity repository.ActivityRepository, submitter dispatch.Submitter) *SendService {
	d := dispatch.New(submitter, nil, config.DispatchConfig{AutoDetectPause: time.Millisecond},
		dispatch.WithSleep(func(time.Duration) {}))
	return NewSendService(d, activity, logger.New("error", "json"))
}

func TestSendService_SendEmailRecordsActivity(t *testing.T) {
	t.Parallel()
	activity := &memActivity{}
	submitter := &fakeSubmitter{}
	svc := newSendService(activity, submitter)

	report, err := svc.SendEmail(context.Background(), EmailSendRequest{
		Transport:  testTransport,
		Recipients: []string{"a@example.com", " b@example.com "},
		Subject:    "Code {random_digit}",
		Body:       "Your code arrived.",
		User:       "alice",
	})
	if err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if report.Summary.Success != 2 || report.Summary.Failed != 0 {
		t.Fatalf("summary = %+v", report.Summary)
	}

	if len(activity.records) != 1 {
		t.Fatalf("expected 1 activity record, got %d", len(activity.records))
	}
	rec := activity.records[0]
	if rec.Channel != model.ChannelEmail || rec.User != "alice" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Recipients != 2 || rec.Success != 2 {
		t.Fatalf("record counts = %+v", rec)
	}
	if strings.Contains(rec.Subject, "{random_digit}") {
		t.Fatalf("subject tokens not resolved: %q", rec.Subject)
	}
	// The batch shares one resolved subject.
	if submitter.sent[0].Subject != submitter.sent[1].Subject {
		t.Fatal("recipients in one batch must share resolved token values")
	}
}

func TestSendService_RecipientListCap(t *testing.T) {
	t.Parallel()
	activity := &memActivity{}
	svc := newSendService(activity, &fakeSubmitter{})

	recipients := make([]string, 25)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("user%d@example.com", i)
	}
	if _, err := svc.SendEmail(context.Background(), EmailSendRequest{
		Transport: testTransport, Recipients: recipients, Subject: "s", Body: "b", User: "alice",
	}); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	rec := activity.records[0]
	if rec.Recipients != 25 {
		t.Fatalf("Recipients = %d, want 25", rec.Recipients)
	}
	if len(rec.RecipientList) != model.MaxRecordedRecipients {
		t.Fatalf("RecipientList length = %d, want %d", len(rec.RecipientList), model.MaxRecordedRecipients)
	}
}

func TestSendService_PartialFailureCounted(t *testing.T) {
	t.Parallel()
	activity := &memActivity{}
	submitter := &fakeSubmitter{failFn: func(msg dispatch.Email) error {
		if msg.To == "bad@example.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}}
	svc := newSendService(activity, submitter)

	report, err := svc.SendEmail(context.Background(), EmailSendRequest{
		Transport:  testTransport,
		Recipients: []string{"good@example.com", "bad@example.com"},
		Subject:    "s", Body: "b", User: "alice",
	})
	if err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if report.Summary.Success != 1 || report.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	if activity.records[0].Failed != 1 {
		t.Fatalf("record = %+v", activity.records[0])
	}
}

// fakeSmsProvider fails numbers listed in bad.
type fakeSmsProvider struct {
	bad map[string]string
}

func (f *fakeSmsProvider) Send(ctx context.Context, to, message string) (string, error) {
	if reason, ok := f.bad[to]; ok {
		return "", errors.New(reason)
	}
	return "msg-" + to, nil
}

func TestSendService_SendAzureSMSDetails(t *testing.T) {
	t.Parallel()
	activity := &memActivity{}
	d := dispatch.New(&fakeSubmitter{}, &fakeSmsProvider{bad: map[string]string{
		"+15550000002": "invalid number",
	}}, config.DispatchConfig{AutoDetectPause: time.Millisecond},
		dispatch.WithSleep(func(time.Duration) {}))
	svc := NewSendService(d, activity, logger.New("error", "json"))

	report, err := svc.SendAzureSMS(context.Background(), AzureSMSSendRequest{
		Recipients: []string{"5550000001", "5550000002"},
		Message:    "ping",
		User:       "alice",
	})
	if err != nil {
		t.Fatalf("SendAzureSMS: %v", err)
	}
	if report.Summary.Success != 1 || report.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	details := report.Summary.Details
	if len(details) != 2 {
		t.Fatalf("details = %+v", details)
	}
	if details[0].Recipient != "5550000001" || details[0].Status != dispatch.StatusSent {
		t.Fatalf("first detail = %+v", details[0])
	}
	if details[1].Status != dispatch.StatusFailed || !strings.Contains(details[1].Message, "invalid number") {
		t.Fatalf("second detail = %+v", details[1])
	}
}

func TestActivityService_Stats(t *testing.T) {
	t.Parallel()
	activity := &memActivity{records: []model.ActivityRecord{
		{Channel: model.ChannelEmail, Success: 3, Failed: 1},
		{Channel: model.ChannelSMS, Success: 1},
		{Channel: model.ChannelAzureSMS, Failed: 1},
	}}
	svc := NewActivityService(activity, logger.New("error", "json"))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalEmail != 1 || stats.TotalSMS != 1 || stats.TotalAzureSMS != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Success != 4 || stats.Failed != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if want := float64(4) / 6 * 100; stats.SuccessRate != want {
		t.Fatalf("SuccessRate = %v, want %v", stats.SuccessRate, want)
	}
}

func TestActivityService_ExportCSV(t *testing.T) {
	t.Parallel()
	activity := &memActivity{records: []model.ActivityRecord{
		{ID: "r1", Channel: model.ChannelEmail, User: "alice", Subject: "Hi",
			Recipients: 1, RecipientList: []string{"a@example.com"}, Success: 1,
			Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}}
	svc := NewActivityService(activity, logger.New("error", "json"))

	var buf strings.Builder
	if err := svc.ExportCSV(context.Background(), &buf, repository.ActivityFilter{}); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "a@example.com") || !strings.Contains(lines[1], "2025-03-01T12:00:00Z") {
		t.Fatalf("row = %q", lines[1])
	}

	buf.Reset()
	if err := svc.ExportJSON(context.Background(), &buf, repository.ActivityFilter{User: "alice"}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var exported []model.ActivityRecord
	if err := json.Unmarshal([]byte(buf.String()), &exported); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(exported) != 1 || exported[0].ID != "r1" {
		t.Fatalf("exported = %+v", exported)
	}
}

func newScheduleService(tasks repository.TaskRepository, activity repository.ActivityRepository, submitter dispatch.Submitter) *ScheduleService {
	return NewScheduleService(tasks, newSendService(activity, submitter), logger.New("error", "json"))
}

func TestScheduleService_AddValidation(t *testing.T) {
	t.Parallel()
	svc := newScheduleService(&memTasks{}, &memActivity{}, &fakeSubmitter{})
	ctx := context.Background()

	err := svc.Add(ctx, &model.ScheduledTask{Channel: model.ChannelEmail, Transport: &testTransport})
	if !errors.Is(err, ErrMissingRecipient) {
		t.Fatalf("Add without recipient = %v", err)
	}
	err = svc.Add(ctx, &model.ScheduledTask{Channel: model.ChannelEmail, Recipient: "a@example.com"})
	if !errors.Is(err, ErrMissingTransport) {
		t.Fatalf("Add without transport = %v", err)
	}
	err = svc.Add(ctx, &model.ScheduledTask{Channel: "carrier-pigeon", Recipient: "a"})
	if !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("Add with unknown channel = %v", err)
	}

	task := &model.ScheduledTask{
		Channel: model.ChannelEmail, Recipient: "a@example.com",
		Transport: &testTransport, ScheduledTime: time.Now().Add(time.Hour),
	}
	if err := svc.Add(ctx, task); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(task.ID) != 8 {
		t.Fatalf("task ID = %q, want 8 characters", task.ID)
	}
	if task.Status != model.TaskStatusPending {
		t.Fatalf("task status = %q", task.Status)
	}
}

func TestScheduleService_RunDueExecutesAndCompletes(t *testing.T) {
	t.Parallel()
	tasks := &memTasks{}
	activity := &memActivity{}
	submitter := &fakeSubmitter{}
	svc := newScheduleService(tasks, activity, submitter)
	ctx := context.Background()

	due := &model.ScheduledTask{
		Channel: model.ChannelEmail, Recipient: "a@example.com", Subject: "Reminder",
		Body: "hello", Transport: &testTransport,
		ScheduledTime: time.Now().Add(-time.Minute), CreatedBy: "alice",
	}
	notDue := &model.ScheduledTask{
		Channel: model.ChannelEmail, Recipient: "b@example.com", Subject: "Later",
		Body: "later", Transport: &testTransport,
		ScheduledTime: time.Now().Add(time.Hour), CreatedBy: "alice",
	}
	if err := svc.Add(ctx, due); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(ctx, notDue); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := svc.RunDue(ctx)
	if err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if len(results) != 1 || results[0].Task.ID != due.ID {
		t.Fatalf("results = %+v", results)
	}
	if !results[0].Result.OK() {
		t.Fatalf("result = %+v", results[0].Result)
	}
	if len(submitter.sent) != 1 || submitter.sent[0].To != "a@example.com" {
		t.Fatalf("sent = %+v", submitter.sent)
	}
	if len(activity.records) != 1 || activity.records[0].User != "alice" {
		t.Fatalf("activity = %+v", activity.records)
	}

	got, err := tasks.Get(ctx, due.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.TaskStatusCompleted || got.ExecutedAt == nil {
		t.Fatalf("task not completed: %+v", got)
	}

	// A second run finds nothing.
	results, err = svc.RunDue(ctx)
	if err != nil {
		t.Fatalf("RunDue again: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("completed task ran twice: %+v", results)
	}
}

func TestScheduleService_RunDueReportsFailure(t *testing.T) {
	t.Parallel()
	tasks := &memTasks{}
	submitter := &fakeSubmitter{failFn: func(msg dispatch.Email) error {
		return errors.New("connection refused")
	}}
	svc := newScheduleService(tasks, &memActivity{}, submitter)
	ctx := context.Background()

	task := &model.ScheduledTask{
		Channel: model.ChannelEmail, Recipient: "a@example.com", Subject: "Reminder",
		Body: "hello", Transport: &testTransport,
		ScheduledTime: time.Now().Add(-time.Minute), CreatedBy: "alice",
	}
	if err := svc.Add(ctx, task); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := svc.RunDue(ctx)
	if err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if len(results) != 1 || results[0].Result.OK() {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Result.Message, "connection refused") {
		t.Fatalf("result message = %q", results[0].Result.Message)
	}

	// Failed tasks are still marked completed, never retried.
	got, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.TaskStatusCompleted {
		t.Fatalf("task = %+v", got)
	}
}

func newAuthService(users repository.UserRepository, bootstrapPassword string) *AuthService {
	cfg := &config.Config{}
	cfg.Security.BootstrapAdminPassword = bootstrapPassword
	// Keep the test fast with small argon2 parameters.
	cfg.Security.Password.Argon2Memory = 8 * 1024
	cfg.Security.Password.Argon2Iterations = 1
	cfg.Security.Password.Argon2Parallelism = 1
	tokenSvc, err := auth.NewTokenService(config.TokenConfig{
		Secret: "test-secret", AccessTokenTTL: time.Hour, Issuer: "dragonmail",
	})
	if err != nil {
		panic(err)
	}
	return NewAuthService(users, tokenSvc, cfg, logger.New("error", "json"))
}

func TestAuthService_SeedAndLogin(t *testing.T) {
	t.Parallel()
	users := &memUsers{}
	svc := newAuthService(users, "bootstrap-password")
	ctx := context.Background()

	if err := svc.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}
	// Idempotent: a second call must not duplicate or reset anything.
	if err := svc.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatalf("EnsureDefaultAdmin again: %v", err)
	}
	if n, _ := users.Count(ctx); n != 1 {
		t.Fatalf("user count = %d, want 1", n)
	}

	session, user, err := svc.Login(ctx, "admin", "bootstrap-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.AccessToken == "" || !user.IsAdmin() {
		t.Fatalf("session = %+v, user = %+v", session, user)
	}

	if _, _, err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login wrong password = %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login unknown user = %v", err)
	}
}

func TestAuthService_LastAdminProtected(t *testing.T) {
	t.Parallel()
	users := &memUsers{}
	svc := newAuthService(users, "")
	ctx := context.Background()

	if err := svc.CreateUser(ctx, "root", "password1", model.RoleAdmin); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.CreateUser(ctx, "bob", "password2", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.CreateUser(ctx, "root", "password3", model.RoleAdmin); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate CreateUser = %v", err)
	}

	if err := svc.DeleteUser(ctx, "root"); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("DeleteUser last admin = %v", err)
	}
	if err := svc.DeleteUser(ctx, "bob"); err != nil {
		t.Fatalf("DeleteUser bob: %v", err)
	}

	if err := svc.CreateUser(ctx, "root2", "password4", model.RoleAdmin); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, "root"); err != nil {
		t.Fatalf("DeleteUser with second admin: %v", err)
	}
}
