package services_test

import (
	"context"
	"time"

	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/types"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (types.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *mockUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *mockUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(types.User), args.Error(1)
}

var _ services.UserRepository = (*mockUserRepo)(nil)

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	args := m.Called(ctx, offset, limit)
	products, _ := args.Get(0).([]types.Product)
	return products, args.Int(1), args.Error(2)
}
func (m *mockProductRepo) Get(ctx context.Context, id int64) (types.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Product), args.Error(1)
}
func (m *mockProductRepo) Create(ctx context.Context, product types.Product) (types.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(types.Product), args.Error(1)
}
func (m *mockProductRepo) Update(ctx context.Context, product types.Product) (types.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(types.Product), args.Error(1)
}
func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ services.ProductRepository = (*mockProductRepo)(nil)

type mockArticleRepo struct{ mock.Mock }

func (m *mockArticleRepo) List(ctx context.Context, offset, limit int) ([]types.Article, int, error) {
	args := m.Called(ctx, offset, limit)
	articles, _ := args.Get(0).([]types.Article)
	return articles, args.Int(1), args.Error(2)
}
func (m *mockArticleRepo) Get(ctx context.Context, id int64) (types.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Article), args.Error(1)
}
func (m *mockArticleRepo) Create(ctx context.Context, article types.Article) (types.Article, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(types.Article), args.Error(1)
}
func (m *mockArticleRepo) Update(ctx context.Context, article types.Article) (types.Article, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(types.Article), args.Error(1)
}
func (m *mockArticleRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ services.ArticleRepository = (*mockArticleRepo)(nil)

type mockCommentRepo struct{ mock.Mock }

func (m *mockCommentRepo) ListByArticle(ctx context.Context, articleID int64, offset, limit int) ([]types.Comment, int, error) {
	args := m.Called(ctx, articleID, offset, limit)
	comments, _ := args.Get(0).([]types.Comment)
	return comments, args.Int(1), args.Error(2)
}
func (m *mockCommentRepo) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]types.Comment, int, error) {
	args := m.Called(ctx, productID, offset, limit)
	comments, _ := args.Get(0).([]types.Comment)
	return comments, args.Int(1), args.Error(2)
}
func (m *mockCommentRepo) Get(ctx context.Context, id int64) (types.Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Comment), args.Error(1)
}
func (m *mockCommentRepo) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(types.Comment), args.Error(1)
}
func (m *mockCommentRepo) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(types.Comment), args.Error(1)
}
func (m *mockCommentRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ services.CommentRepository = (*mockCommentRepo)(nil)

type mockReactionRepo struct{ mock.Mock }

func (m *mockReactionRepo) Insert(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.Reaction, error) {
	args := m.Called(ctx, kind, resourceID, userID)
	return args.Get(0).(types.Reaction), args.Error(1)
}
func (m *mockReactionRepo) Delete(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) error {
	return m.Called(ctx, kind, resourceID, userID).Error(0)
}
func (m *mockReactionRepo) Summarize(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.ReactionSummary, error) {
	args := m.Called(ctx, kind, resourceID, userID)
	return args.Get(0).(types.ReactionSummary), args.Error(1)
}
func (m *mockReactionRepo) ListUserIDs(ctx context.Context, kind types.ReactionKind, resourceID int64) ([]int64, error) {
	args := m.Called(ctx, kind, resourceID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

var _ services.ReactionRepository = (*mockReactionRepo)(nil)

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, notifications []types.Notification) error {
	return m.Called(ctx, notifications).Error(0)
}
func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]types.Notification, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	notifications, _ := args.Get(0).([]types.Notification)
	return notifications, args.Int(1), args.Error(2)
}
func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockNotificationRepo) Get(ctx context.Context, id int64) (types.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Notification), args.Error(1)
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	return m.Called(ctx, id, readAt).Error(0)
}

var _ services.NotificationRepository = (*mockNotificationRepo)(nil)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) CreatePriceChanged(ctx context.Context, productID, newPrice int64, recipientIDs []int64) error {
	return m.Called(ctx, productID, newPrice, recipientIDs).Error(0)
}

var _ services.PriceChangeNotifier = (*mockNotifier)(nil)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	args := m.Called(ctx, channel, data, attrs)
	return args.String(0), args.Error(1)
}

var _ services.EventPublisher = (*mockPublisher)(nil)

type mockPusher struct{ mock.Mock }

func (m *mockPusher) Push(ctx context.Context, userID int64, payload types.NotificationPayload) error {
	return m.Called(ctx, userID, payload).Error(0)
}

var _ services.Pusher = (*mockPusher)(nil)
