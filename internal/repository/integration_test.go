//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=campus_bot password=campus_bot_password dbname=campus_bot_test sslmode=disable TimeZone=Asia/Taipei"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Note{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newTestUserID() string {
	return fmt.Sprintf("U_test_%d", time.Now().UnixNano())
}

func TestCourseRepoCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRepository(testDB)
	userID := newTestUserID()
	defer testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.Course{})

	courses := []model.Course{
		{UserID: userID, CourseName: "微積分", DayOfWeek: 2, StartTime: "10:10", EndTime: "12:00"},
		{UserID: userID, CourseName: "資料結構", DayOfWeek: 1, StartTime: "09:10", EndTime: "10:00"},
	}
	for i := range courses {
		if err := repo.Create(ctx, &courses[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 || got[0].CourseName != "資料結構" {
		t.Errorf("列表应按星期与时间排序，实际 %+v", got)
	}
}

func TestCourseRepoDeleteByIDSilentNoop(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRepository(testDB)
	userID := newTestUserID()
	defer testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.Course{})

	course := model.Course{UserID: userID, CourseName: "資料結構", DayOfWeek: 1, StartTime: "09:10", EndTime: "10:00"}
	if err := repo.Create(ctx, &course); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 不存在的 id 与别人的 id 都静默成功
	if err := repo.DeleteByID(ctx, userID, course.ID+100); err != nil {
		t.Errorf("不存在的 id 应静默成功，实际 %v", err)
	}
	if err := repo.DeleteByID(ctx, "U_someone_else", course.ID); err != nil {
		t.Errorf("跨用户删除应静默成功，实际 %v", err)
	}
	if n, _ := repo.CountByUser(ctx, userID); n != 1 {
		t.Fatalf("静默删除不应动到别人的课程，剩余 %d", n)
	}

	if err := repo.DeleteByID(ctx, userID, course.ID); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if n, _ := repo.CountByUser(ctx, userID); n != 0 {
		t.Errorf("删除后应剩 0 门，实际 %d", n)
	}
}
