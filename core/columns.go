package core

// 默认列名，与常见的 MovieLens 风格交互表保持一致。
const (
	DefaultUserCol      = "userID"
	DefaultItemCol      = "itemID"
	DefaultRatingCol    = "rating"
	DefaultLabelCol     = "label"
	DefaultTimestampCol = "timestamp"
)
