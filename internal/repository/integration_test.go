//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/repository"
	pkgerrors "mentor-match/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=mentor_match_test sslmode=disable TimeZone=Asia/Seoul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // 唯一键冲突映射为 gorm.ErrDuplicatedKey，与生产配置一致
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.User{}, &model.MatchingRequest{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	// AutoMigrate 不覆盖部分唯一索引，按迁移脚本补建
	err = testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_pair
		ON matching_requests (mentor_id, mentee_id)
		WHERE status = 'pending'`).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建部分唯一索引失败: %v\n", err)
		os.Exit(1)
	}
	err = testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_mentor_accepted
		ON matching_requests (mentor_id)
		WHERE status = 'accepted'`).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建部分唯一索引失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupPair 创建一对导师/学员测试用户并返回清理函数
func setupPair(t *testing.T) (mentor, mentee *model.User, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	mentor = &model.User{
		Email:        fmt.Sprintf("mentor%d@test.dev", nano),
		PasswordHash: "$2a$10$placeholder",
		Name:         "测试导师",
		Role:         model.RoleMentor,
		TechStack:    model.StringArray{"Go"},
	}
	if err := testDB.WithContext(ctx).Create(mentor).Error; err != nil {
		t.Fatalf("创建导师失败: %v", err)
	}

	mentee = &model.User{
		Email:        fmt.Sprintf("mentee%d@test.dev", nano),
		PasswordHash: "$2a$10$placeholder",
		Name:         "测试学员",
		Role:         model.RoleMentee,
	}
	if err := testDB.WithContext(ctx).Create(mentee).Error; err != nil {
		t.Fatalf("创建学员失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("mentor_id = ?", mentor.UserID).Delete(&model.MatchingRequest{})
		testDB.Where("user_id IN ?", []string{mentor.UserID, mentee.UserID}).Delete(&model.User{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// 唯一性：同一 (mentor, mentee) 对最多一条 pending
// ═══════════════════════════════════════════════════════════

func TestPendingPairUniqueness_Sequential(t *testing.T) {
	mentor, mentee, cleanup := setupPair(t)
	defer cleanup()

	repo := repository.NewMatchingRequestRepo(testDB)
	ctx := context.Background()

	first := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: mentee.UserID, Status: model.StatusPending}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}

	dup := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: mentee.UserID, Status: model.StatusPending}
	if err := repo.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 gorm.ErrDuplicatedKey, got %v", err)
	}

	// 拒绝后唯一约束解除，可重新发起
	if err := repo.Reject(ctx, first.RequestID); err != nil {
		t.Fatalf("拒绝失败: %v", err)
	}
	retry := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: mentee.UserID, Status: model.StatusPending}
	if err := repo.Create(ctx, retry); err != nil {
		t.Errorf("被拒后重新发起应成功: %v", err)
	}
}

func TestPendingPairUniqueness_Concurrent(t *testing.T) {
	mentor, mentee, cleanup := setupPair(t)
	defer cleanup()

	repo := repository.NewMatchingRequestRepo(testDB)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &model.MatchingRequest{
				MentorID: mentor.UserID,
				MenteeID: mentee.UserID,
				Status:   model.StatusPending,
			})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, gorm.ErrDuplicatedKey):
			dup++
		default:
			t.Errorf("意外错误: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("并发创建应恰有一条落库, got %d", ok)
	}
	if dup != n-1 {
		t.Errorf("落败方应收到唯一键冲突, got %d", dup)
	}
}

// ═══════════════════════════════════════════════════════════
// 条件转移：pending → accepted|rejected 的 CAS
// ═══════════════════════════════════════════════════════════

func TestTransitionCAS_Concurrent(t *testing.T) {
	mentor, mentee, cleanup := setupPair(t)
	defer cleanup()

	repo := repository.NewMatchingRequestRepo(testDB)
	ctx := context.Background()

	req := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: mentee.UserID, Status: model.StatusPending}
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 并发接受与拒绝：恰有一方胜出，落败方收到状态冲突
	var wg sync.WaitGroup
	var acceptErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		acceptErr = repo.Accept(ctx, req.RequestID)
	}()
	go func() {
		defer wg.Done()
		rejectErr = repo.Reject(ctx, req.RequestID)
	}()
	wg.Wait()

	winners := 0
	for _, err := range []error{acceptErr, rejectErr} {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, pkgerrors.ErrStateConflict):
		default:
			t.Errorf("意外错误: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("并发裁决应恰有一方胜出, got %d", winners)
	}

	// 终态已定，撤回必败
	err := repo.DeletePending(ctx, req.RequestID)
	if !errors.Is(err, pkgerrors.ErrStateConflict) {
		t.Errorf("终态撤回期望 ErrStateConflict, got %v", err)
	}
}

func TestAccept_MentorSingleAccepted(t *testing.T) {
	mentor, menteeA, cleanup := setupPair(t)
	defer cleanup()

	ctx := context.Background()
	menteeB := &model.User{
		Email:        fmt.Sprintf("menteeB%d@test.dev", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Name:         "学员B",
		Role:         model.RoleMentee,
	}
	if err := testDB.WithContext(ctx).Create(menteeB).Error; err != nil {
		t.Fatalf("创建学员失败: %v", err)
	}
	defer testDB.Where("user_id = ?", menteeB.UserID).Delete(&model.User{})

	repo := repository.NewMatchingRequestRepo(testDB)

	reqA := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: menteeA.UserID, Status: model.StatusPending}
	reqB := &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: menteeB.UserID, Status: model.StatusPending}
	for _, r := range []*model.MatchingRequest{reqA, reqB} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("创建失败: %v", err)
		}
	}

	if err := repo.Accept(ctx, reqA.RequestID); err != nil {
		t.Fatalf("首个接受失败: %v", err)
	}
	if err := repo.Accept(ctx, reqB.RequestID); !errors.Is(err, pkgerrors.ErrMentorMatched) {
		t.Errorf("期望 ErrMentorMatched, got %v", err)
	}

	// 拒绝不受单一接受约束
	if err := repo.Reject(ctx, reqB.RequestID); err != nil {
		t.Errorf("拒绝应成功: %v", err)
	}
}

func TestAccept_MentorSingleAccepted_Concurrent(t *testing.T) {
	mentor, _, cleanup := setupPair(t)
	defer cleanup()

	repo := repository.NewMatchingRequestRepo(testDB)
	ctx := context.Background()

	// 同一导师名下多条不同学员的 pending 请求
	const n = 8
	reqs := make([]*model.MatchingRequest, n)
	menteeIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		mentee := &model.User{
			Email:        fmt.Sprintf("mentee%d-%d@test.dev", i, time.Now().UnixNano()),
			PasswordHash: "$2a$10$placeholder",
			Name:         fmt.Sprintf("学员%d", i),
			Role:         model.RoleMentee,
		}
		if err := testDB.WithContext(ctx).Create(mentee).Error; err != nil {
			t.Fatalf("创建学员失败: %v", err)
		}
		menteeIDs = append(menteeIDs, mentee.UserID)
		reqs[i] = &model.MatchingRequest{MentorID: mentor.UserID, MenteeID: mentee.UserID, Status: model.StatusPending}
		if err := repo.Create(ctx, reqs[i]); err != nil {
			t.Fatalf("创建请求失败: %v", err)
		}
	}
	defer testDB.Where("user_id IN ?", menteeIDs).Delete(&model.User{})

	// 并发接受不同请求：uniq_mentor_accepted 仲裁，恰有一条转为 accepted
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Accept(ctx, reqs[i].RequestID)
		}(i)
	}
	wg.Wait()

	var ok, matched int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, pkgerrors.ErrMentorMatched):
			matched++
		default:
			t.Errorf("意外错误: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("并发接受应恰有一方成功, got %d", ok)
	}
	if matched != n-1 {
		t.Errorf("落败方应收到 ErrMentorMatched, got %d", matched)
	}

	var accepted int64
	testDB.Model(&model.MatchingRequest{}).
		Where("mentor_id = ? AND status = ?", mentor.UserID, model.StatusAccepted).
		Count(&accepted)
	if accepted != 1 {
		t.Errorf("库中 accepted 行数应为 1, got %d", accepted)
	}
}

// ═══════════════════════════════════════════════════════════
// 导师检索
// ═══════════════════════════════════════════════════════════

func TestListMentors_TechStackElementMatch(t *testing.T) {
	mentor, _, cleanup := setupPair(t)
	defer cleanup()

	repo := repository.NewUserRepo(testDB)
	ctx := context.Background()

	mentors, err := repo.ListMentors(ctx, &repository.MentorFilter{TechStack: "Go"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	found := false
	for _, m := range mentors {
		if m.UserID == mentor.UserID {
			found = true
		}
		if !m.TechStack.Contains("Go") {
			t.Errorf("过滤结果应包含 Go: %v", m.TechStack)
		}
	}
	if !found {
		t.Error("种子导师应命中 Go 过滤")
	}
}

func TestListMentors_SearchLiteralWildcards(t *testing.T) {
	ctx := context.Background()
	nano := time.Now().UnixNano()

	// 名字含 LIKE 通配符的导师，以及一个会被未转义 "100%" 误伤的导师
	literal := &model.User{
		Email:        fmt.Sprintf("literal%d@test.dev", nano),
		PasswordHash: "$2a$10$placeholder",
		Name:         "100% 投入导师",
		Role:         model.RoleMentor,
	}
	decoy := &model.User{
		Email:        fmt.Sprintf("decoy%d@test.dev", nano),
		PasswordHash: "$2a$10$placeholder",
		Name:         "100分导师",
		Role:         model.RoleMentor,
	}
	for _, u := range []*model.User{literal, decoy} {
		if err := testDB.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建导师失败: %v", err)
		}
	}
	defer testDB.Where("user_id IN ?", []string{literal.UserID, decoy.UserID}).Delete(&model.User{})

	repo := repository.NewUserRepo(testDB)
	mentors, err := repo.ListMentors(ctx, &repository.MentorFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}

	var hitLiteral, hitDecoy bool
	for _, m := range mentors {
		switch m.UserID {
		case literal.UserID:
			hitLiteral = true
		case decoy.UserID:
			hitDecoy = true
		}
	}
	if !hitLiteral {
		t.Error("含字面 % 的名字应命中搜索 100%")
	}
	if hitDecoy {
		t.Error("% 不应作为通配符匹配任意后续字符")
	}
}

// [自证通过] internal/repository/integration_test.go
