package difficulty

import (
	"container/list"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Config 难度评估配置
type Config struct {
	DefaultSkill        float64 // 新档案初始技能
	DefaultAdaptability float64 // EMA平滑系数
	RecentWindow        int     // 参与评估的最近学习点数
	MaxProfiles         int     // 内存档案数上限(LRU)
}

// GetDefaultConfig 默认配置
func GetDefaultConfig() *Config {
	return &Config{
		DefaultSkill:        0.5,
		DefaultAdaptability: 0.3,
		RecentWindow:        10,
		MaxProfiles:         10000,
	}
}

// Metrics 单次评估结果
type Metrics struct {
	CurrentSkill          float64            `json:"current_skill"`          // 0-1
	RecommendedDifficulty float64            `json:"recommended_difficulty"` // 0-1
	AdjustmentStrategy    string             `json:"adjustment_strategy"`    // increase | decrease | maintain
	AdjustmentReason      string             `json:"adjustment_reason"`
	Confidence            float64            `json:"confidence"` // 0-1
	Factors               map[string]float64 `json:"factors"`
}

// PerformanceMetrics 外部观测的单次会话表现
type PerformanceMetrics struct {
	Performance  float64 // 0-1
	TimeToMaster float64 // 小时
	Attempts     int
	Success      bool
}

// FlushFunc 档案被LRU驱逐时的落盘回调
type FlushFunc func(profile *models.DifficultyProfile)

// Assessor 按用户维护难度档案的有状态评估器
// 档案懒创建, 内存中以LRU上限约束, 驱逐时经flush回调交还调用方持久化。
// 跨goroutine并发更新由内部读写锁保护。
type Assessor struct {
	mu       sync.RWMutex
	config   *Config
	profiles map[uint]*list.Element
	order    *list.List // Front为最近使用
	flush    FlushFunc
}

type arenaEntry struct {
	userID  uint
	profile *models.DifficultyProfile
}

// NewAssessor 创建难度评估器, flush可为nil
func NewAssessor(config *Config, flush FlushFunc) *Assessor {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &Assessor{
		config:   config,
		profiles: make(map[uint]*list.Element),
		order:    list.New(),
		flush:    flush,
	}
}

// LoadProfile 预加载已持久化的档案(进程启动或缓存未命中时)
func (a *Assessor) LoadProfile(profile *models.DifficultyProfile) {
	if profile == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.insertLocked(profile.UserID, profile)
}

// Profile 取用户档案副本, 不存在时返回nil
func (a *Assessor) Profile(userID uint) *models.DifficultyProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if el, ok := a.profiles[userID]; ok {
		cp := *el.Value.(*arenaEntry).profile
		return &cp
	}
	return nil
}

// ProfileCount 内存中的档案数
func (a *Assessor) ProfileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.profiles)
}

// AssessDifficulty 评估用户对指定游戏的当前技能与建议难度
// 学习曲线不足窗口时用recentSessions推导的表现点补足样本。
// 档案不存在时用默认值懒创建, 永不返回nil。
func (a *Assessor) AssessDifficulty(userID uint, game *models.Game, recentSessions []models.GameSession) *Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	profile := a.getOrCreateLocked(userID)

	genre := ""
	if game != nil && len(game.Genres) > 0 {
		genre = game.Genres[0]
	}

	recent := recentPoints(profile.LearningCurve, a.config.RecentWindow)
	if len(recent) < a.config.RecentWindow && len(recentSessions) > 0 {
		merged := append(sessionPoints(recentSessions, recent), recent...)
		sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
		recent = recentPoints(merged, a.config.RecentWindow)
	}
	perf := averagePerformance(recent)
	consistency := consistencyOf(recent)
	trend := improvementTrend(recent)
	familiarity := a.genreFamiliarityLocked(profile, genre)

	// 以当前技能为基线混合四项观测因子
	skill := profile.SkillLevel*0.4 + perf*0.25 + familiarity*0.15 +
		vector.Clamp01(0.5+trend)*0.1 + consistency*0.1
	skill = vector.Clamp01(skill)

	recommended, strategy, reason := a.recommendDifficulty(profile, perf, len(recent))

	confidence := vector.Clamp01(float64(len(recent)) / float64(a.config.RecentWindow))

	return &Metrics{
		CurrentSkill:          skill,
		RecommendedDifficulty: recommended,
		AdjustmentStrategy:    strategy,
		AdjustmentReason:      reason,
		Confidence:            confidence,
		Factors: map[string]float64{
			"recent_performance": perf,
			"consistency":        consistency,
			"improvement_trend":  trend,
			"genre_familiarity":  familiarity,
		},
	}
}

// UpdateProfile 用新会话更新用户档案
// 追加学习点, EMA推移SkillLevel, 更新会话类型的难度记录;
// 返回更新后的档案副本, 由调用方持久化。
func (a *Assessor) UpdateProfile(userID uint, session *models.GameSession, perf *PerformanceMetrics) *models.DifficultyProfile {
	a.mu.Lock()
	defer a.mu.Unlock()

	profile := a.getOrCreateLocked(userID)

	performance := derivePerformance(session, perf)
	difficulty := 0.5
	if session != nil && session.Difficulty != nil {
		difficulty = vector.Clamp01(*session.Difficulty)
	}

	point := models.LearningPoint{
		ProfileID:   profile.ID,
		Timestamp:   time.Now(),
		Difficulty:  difficulty,
		Performance: performance,
	}
	if session != nil {
		point.GameID = session.GameID
		point.Timestamp = session.StartTime
	}
	if perf != nil {
		point.TimeToMaster = perf.TimeToMaster
		point.Attempts = perf.Attempts
		point.Success = perf.Success
	} else {
		point.Success = performance >= 0.5
	}
	profile.LearningCurve = append(profile.LearningCurve, point)

	// 表现好于当前难度处境时技能上移, 反之下移
	observed := vector.Clamp01(difficulty*0.5 + performance*0.5)
	rate := profile.AdaptabilityRate
	profile.SkillLevel = vector.Clamp01(profile.SkillLevel*(1-rate) + observed*rate)

	if session != nil && session.Genre != "" {
		if profile.GenreDifficulties == nil {
			profile.GenreDifficulties = models.FloatMap{}
		}
		prev := profile.GenreDifficulties[session.Genre]
		profile.GenreDifficulties[session.Genre] = vector.Clamp01(prev*(1-rate) + performance*rate)
	}

	cp := *profile
	return &cp
}

// recommendDifficulty 以心流区间为目标给出建议难度与调整策略
func (a *Assessor) recommendDifficulty(profile *models.DifficultyProfile, perf float64, samples int) (float64, string, string) {
	if samples == 0 {
		return profile.FlowZoneOptimal, "maintain", "数据不足, 维持心流区间默认难度"
	}

	switch {
	case perf > profile.FlowZoneMax:
		target := vector.Clamp01(profile.FlowZoneOptimal + (perf - profile.FlowZoneMax))
		return target, "increase", fmt.Sprintf("近期表现%.2f高于心流上限%.2f, 建议提高难度", perf, profile.FlowZoneMax)
	case perf < profile.FlowZoneMin:
		target := vector.Clamp01(profile.FlowZoneOptimal - (profile.FlowZoneMin - perf))
		return target, "decrease", fmt.Sprintf("近期表现%.2f低于心流下限%.2f, 建议降低难度", perf, profile.FlowZoneMin)
	default:
		return profile.FlowZoneOptimal, "maintain", "表现处于心流区间, 维持当前难度"
	}
}

// getOrCreateLocked 懒创建默认档案, 调用方需持有写锁
func (a *Assessor) getOrCreateLocked(userID uint) *models.DifficultyProfile {
	if el, ok := a.profiles[userID]; ok {
		a.order.MoveToFront(el)
		return el.Value.(*arenaEntry).profile
	}

	profile := &models.DifficultyProfile{
		UserID:               userID,
		SkillLevel:           a.config.DefaultSkill,
		AdaptabilityRate:     a.config.DefaultAdaptability,
		PreferredDifficulty:  a.config.DefaultSkill,
		FrustrationThreshold: 0.3,
		FlowZoneMin:          0.4,
		FlowZoneMax:          0.7,
		FlowZoneOptimal:      0.55,
		GenreDifficulties:    models.FloatMap{},
	}
	a.insertLocked(userID, profile)
	return profile
}

// insertLocked 插入档案并按LRU上限驱逐, 调用方需持有写锁
func (a *Assessor) insertLocked(userID uint, profile *models.DifficultyProfile) {
	if el, ok := a.profiles[userID]; ok {
		el.Value.(*arenaEntry).profile = profile
		a.order.MoveToFront(el)
		return
	}

	el := a.order.PushFront(&arenaEntry{userID: userID, profile: profile})
	a.profiles[userID] = el

	for len(a.profiles) > a.config.MaxProfiles {
		oldest := a.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*arenaEntry)
		a.order.Remove(oldest)
		delete(a.profiles, entry.userID)
		if a.flush != nil {
			a.flush(entry.profile)
		}
	}
}

// genreFamiliarityLocked 类型熟悉度, 无记录时取中值
func (a *Assessor) genreFamiliarityLocked(profile *models.DifficultyProfile, genre string) float64 {
	if genre == "" || profile.GenreDifficulties == nil {
		return 0.5
	}
	if v, ok := profile.GenreDifficulties[genre]; ok {
		return v
	}
	return 0.5
}

// sessionPoints 将会话推导为表现点, 跳过学习曲线已覆盖的会话
func sessionPoints(sessions []models.GameSession, curve []models.LearningPoint) []models.LearningPoint {
	seen := make(map[string]bool, len(curve))
	for _, p := range curve {
		seen[fmt.Sprintf("%d@%d", p.GameID, p.Timestamp.Unix())] = true
	}

	var points []models.LearningPoint
	for i := range sessions {
		s := &sessions[i]
		if seen[fmt.Sprintf("%d@%d", s.GameID, s.StartTime.Unix())] {
			continue
		}
		difficulty := 0.5
		if s.Difficulty != nil {
			difficulty = vector.Clamp01(*s.Difficulty)
		}
		performance := derivePerformance(s, nil)
		points = append(points, models.LearningPoint{
			GameID:      s.GameID,
			Timestamp:   s.StartTime,
			Difficulty:  difficulty,
			Performance: performance,
			Success:     performance >= 0.5,
		})
	}
	return points
}

// recentPoints 学习曲线末尾的window个点
func recentPoints(curve []models.LearningPoint, window int) []models.LearningPoint {
	if len(curve) <= window {
		return curve
	}
	return curve[len(curve)-window:]
}

// averagePerformance 平均表现, 空集取中值
func averagePerformance(points []models.LearningPoint) float64 {
	if len(points) == 0 {
		return 0.5
	}
	var total float64
	for _, p := range points {
		total += p.Performance
	}
	return total / float64(len(points))
}

// consistencyOf 一致性 = 1 - 表现方差(裁剪到[0,1])
func consistencyOf(points []models.LearningPoint) float64 {
	if len(points) < 2 {
		return 0.5
	}
	mean := averagePerformance(points)
	var variance float64
	for _, p := range points {
		d := p.Performance - mean
		variance += d * d
	}
	variance /= float64(len(points))
	return vector.Clamp01(1 - variance*4)
}

// improvementTrend 表现随时间的斜率, 用最小二乘在序号轴上拟合
func improvementTrend(points []models.LearningPoint) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Performance
		sumXY += x * p.Performance
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// derivePerformance 从显式指标或会话信号推导表现分
func derivePerformance(session *models.GameSession, perf *PerformanceMetrics) float64 {
	if perf != nil {
		return vector.Clamp01(perf.Performance)
	}
	if session == nil {
		return 0.5
	}

	score := 0.5
	if session.Completed != nil && *session.Completed {
		score += 0.25
	}
	if session.Rating != nil {
		score = score*0.5 + (*session.Rating/5.0)*0.5
	}
	return vector.Clamp01(score)
}
