package recommend

// Config 推荐引擎配置
// 四路信号权重在构造时归一化为和1, 运行期不再调整。
type Config struct {
	CollaborativeWeight float64 // 协同过滤权重
	ContentBasedWeight  float64 // 内容相似权重
	MoodWeight          float64 // 情绪匹配权重
	PlaystyleWeight     float64 // 玩法匹配权重
	MinDataPoints       int     // 低于此数据量走回退路径
	ReasonThreshold     float64 // 信号超过该值才生成推荐理由
	IndexTopK           int     // 向量索引预筛候选数
	MaxCount            int     // 单次返回上限
	VectorDimension     int     // 特征向量对齐维度, 0为自由维度
}

// GetDefaultConfig 默认配置
func GetDefaultConfig() *Config {
	return &Config{
		CollaborativeWeight: 0.3,
		ContentBasedWeight:  0.3,
		MoodWeight:          0.25,
		PlaystyleWeight:     0.15,
		MinDataPoints:       3,
		ReasonThreshold:     0.6,
		IndexTopK:           100,
		MaxCount:            50,
	}
}

// Context 单次推荐请求的上下文过滤条件
type Context struct {
	CurrentMood   string   `json:"current_mood,omitempty"`   // 空则用画像中的计算情绪
	Genres        []string `json:"genres,omitempty"`         // 限定类型
	Platform      string   `json:"platform,omitempty"`       // 限定平台
	SocialContext string   `json:"social_context,omitempty"` // solo | group
	TimeAvailable float64  `json:"time_available,omitempty"` // 可用时长(小时), 0为不限
	ExcludeRecent bool     `json:"exclude_recent,omitempty"` // 排除近期玩过的游戏
	Count         int      `json:"count"`                    // 期望条数
}

// Recommendation 单条推荐结果
// Score及三个匹配分量均在[0,1]; Fallback标记回退路径产物。
type Recommendation struct {
	GameID            uint     `json:"game_id"`
	Score             float64  `json:"score"`
	Reasons           []string `json:"reasons"`
	MoodMatch         float64  `json:"mood_match"`
	PlaystyleMatch    float64  `json:"playstyle_match"`
	SocialMatch       float64  `json:"social_match"`
	EstimatedPlaytime float64  `json:"estimated_playtime"`
	Difficulty        float64  `json:"difficulty"`
	Tags              []string `json:"tags"`
	Confidence        float64  `json:"confidence"` // 0-1
	Fallback          bool     `json:"fallback"`
}

// Profile 用户行为画像
// 每次推荐调用时从完整会话历史重建, 不做增量持久化。
type Profile struct {
	UserID               uint               `json:"user_id"`
	TotalPlaytime        float64            `json:"total_playtime"`         // 小时
	AverageSessionLength float64            `json:"average_session_length"` // 小时
	PreferredGenres      map[string]float64 `json:"preferred_genres"`       // 归一化权重
	MoodPatterns         map[string]float64 `json:"mood_patterns"`          // 归一化权重
	DifficultyPreference float64            `json:"difficulty_preference"`  // 0-1
	SocialPreference     float64            `json:"social_preference"`      // 0-1
	CompletionRate       float64            `json:"completion_rate"`        // 0-1
	LastActive           int64              `json:"last_active"`            // unix秒, 0为从未活跃
}
