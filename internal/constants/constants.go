package constants

// 订单状态常量
const (
	OrderStatusNew        = "new"
	OrderStatusProcessing = "processing"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "cancelled"
)

// 配送方式常量
const (
	DeliveryMethodPickup  = "pickup"
	DeliveryMethodCourier = "courier"
)

// 商品季节标签常量
const (
	SeasonSummer = "summer"
	SeasonWinter = "winter"
	SeasonAll    = "all"
)

// 离线同步队列条目类型常量
const (
	SyncTypeCart     = "cart"
	SyncTypeFavorite = "favorite"
	SyncTypeOrder    = "order"
)

// 离线同步队列动作常量
const (
	SyncActionCreate = "create"
	SyncActionUpsert = "upsert"
	SyncActionRemove = "remove"
)

// 边缘缓存元数据键常量
const (
	MetaProductsCachedAt   = "products_cached_at"
	MetaCategoriesCachedAt = "categories_cached_at"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 通知消息类型常量
const (
	NotifyTypeNewOrder     = "new_order"
	NotifyTypeStatusChange = "status_change"
)

// 异步任务类型常量
const (
	TaskOrderNotifyPush    = "order:notify_push"
	TaskOrderNotifyMessage = "order:notify_message"
	TaskOfflineDrain       = "offline:drain"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 对比清单容量上限
const CompareLimit = 4

// 评价评分范围
const (
	ReviewRatingMin = 1
	ReviewRatingMax = 5
)
