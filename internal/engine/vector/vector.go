package vector

import (
	"math"
)

// CosineSimilarity 计算两个向量的余弦相似度, 结果范围[-1,1]
// 维度不一致时短向量按零填充处理; 任一向量模长为零时返回0,
// 保证在全部输入域上都有定义, 不产生错误。
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		dot += x * y
		magA += x * x
		magB += y * y
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))

	// 浮点误差可能越界
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// Normalize 将向量归一化为单位向量, 零向量原样返回副本
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var mag float64
	for _, x := range v {
		mag += x * x
	}
	if mag == 0 {
		copy(out, v)
		return out
	}
	mag = math.Sqrt(mag)
	for i, x := range v {
		out[i] = x / mag
	}
	return out
}

// Clamp 把x限制到[min,max]区间
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// Clamp01 把x限制到[0,1]区间
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}
