package recommend

import (
	"math"
	"sort"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Matrix 稀疏用户-物品隐式评分矩阵
// 评分由会话的完成度/显式评分/时长折算得到, 范围[0,1]。
type Matrix struct {
	ratings map[uint]map[uint]float64 // userID -> gameID -> rating
}

// NewMatrix 创建空矩阵
func NewMatrix() *Matrix {
	return &Matrix{ratings: make(map[uint]map[uint]float64)}
}

// BuildMatrix 从全体用户的会话构建矩阵
func BuildMatrix(sessions []models.GameSession) *Matrix {
	m := NewMatrix()
	for i := range sessions {
		m.AddSession(&sessions[i])
	}
	return m
}

// AddSession 把一条会话折算进矩阵, 同一(用户,游戏)保留最高评分
func (m *Matrix) AddSession(s *models.GameSession) {
	rating := ImplicitRating(s)

	row, ok := m.ratings[s.UserID]
	if !ok {
		row = make(map[uint]float64)
		m.ratings[s.UserID] = row
	}
	if rating > row[s.GameID] {
		row[s.GameID] = rating
	}
}

// ImplicitRating 会话的隐式评分
// 显式评分占主导, 完成与时长作为行为信号补充。
func ImplicitRating(s *models.GameSession) float64 {
	score := 0.0

	if s.Rating != nil {
		score += (*s.Rating / 5.0) * 0.6
	} else {
		score += 0.3 // 无显式评分时的中性底分
	}

	if s.Completed != nil && *s.Completed {
		score += 0.2
	}

	// 时长信号: 2小时封顶
	score += vector.Clamp(s.DurationHours(), 0, 2) / 2 * 0.2

	return vector.Clamp01(score)
}

// RaterCount 给某游戏评过分的用户数(不含指定用户)
func (m *Matrix) RaterCount(gameID, excludeUser uint) int {
	count := 0
	for userID, row := range m.ratings {
		if userID == excludeUser {
			continue
		}
		if _, ok := row[gameID]; ok {
			count++
		}
	}
	return count
}

// Score 基于用户的协同过滤打分, 结果在[0,1]
// 计算目标用户与其他用户在共同评分物品上的余弦相似度,
// 用相似度加权其他用户对候选游戏的评分。
// 评分人数不足minRaters时返回(0, false), 由上层降权处理。
func (m *Matrix) Score(userID, gameID uint, minRaters int) (float64, bool) {
	if m.RaterCount(gameID, userID) < minRaters {
		return 0, false
	}

	userRow := m.ratings[userID]
	if len(userRow) == 0 {
		return 0, false
	}

	// 按userID有序遍历保证确定性
	others := make([]uint, 0, len(m.ratings))
	for other := range m.ratings {
		if other != userID {
			others = append(others, other)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })

	var weighted, simTotal float64
	for _, other := range others {
		otherRow := m.ratings[other]
		rating, rated := otherRow[gameID]
		if !rated {
			continue
		}

		sim := rowSimilarity(userRow, otherRow)
		if sim <= 0 {
			continue
		}
		weighted += sim * rating
		simTotal += sim
	}

	if simTotal == 0 {
		return 0, false
	}
	return vector.Clamp01(weighted / simTotal), true
}

// rowSimilarity 两个稀疏评分行的余弦相似度, 只在物品并集上计算
func rowSimilarity(a, b map[uint]float64) float64 {
	var dot, magA, magB float64
	for gameID, ra := range a {
		magA += ra * ra
		if rb, ok := b[gameID]; ok {
			dot += ra * rb
		}
	}
	for _, rb := range b {
		magB += rb * rb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
