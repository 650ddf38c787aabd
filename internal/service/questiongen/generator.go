// Package questiongen генерирует арифметические вопросы для игровых сессий.
// Сложность операндов и набор операций растут с уровнем (1-5); результат
// всегда неотрицательное целое число.
package questiongen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Question — сгенерированный вопрос. Живёт только внутри сессии: в базе
// сохраняется лишь его текст в журнале ответов.
type Question struct {
	// ID — уникальный идентификатор вопроса в рамках сессии. Клиент обязан
	// вернуть его вместе с ответом; несовпадение означает устаревший вопрос.
	ID     string
	X      int
	Y      int
	Op     string
	Answer int
	Text   string
}

// stageParams описывает параметры генерации для одного уровня
type stageParams struct {
	maxAddSub int      // верхняя граница операндов для + и -
	maxMul    int      // верхняя граница операндов для *; 0 = умножение недоступно
	ops       []string // доступные операции
}

// Параметры уровней 1-5. Индекс 0 соответствует уровню 1.
var stages = []stageParams{
	{maxAddSub: 5, ops: []string{"+"}},
	{maxAddSub: 10, ops: []string{"+", "-"}},
	{maxAddSub: 20, ops: []string{"+", "-"}},
	{maxAddSub: 50, maxMul: 10, ops: []string{"+", "-", "*"}},
	{maxAddSub: 100, maxMul: 12, ops: []string{"+", "-", "*"}},
}

// youngPlayerAge — до этого возраста игрок получает только сложение
// с небольшими операндами независимо от уровня
const youngPlayerAge = 7

// maxGenerateAttempts ограничивает перебор при исключении уже решённых
// вопросов: игра не должна зависнуть, даже если игрок решил почти всё
const maxGenerateAttempts = 50

// Generator генерирует вопросы. Безопасен для конкурентного использования.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator создает новый генератор вопросов
func NewGenerator() *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorWithSeed создает генератор с фиксированным зерном (для тестов)
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// ClampStage приводит уровень к допустимому диапазону [1, 5].
// Выход за границы не считается ошибкой: игра ребёнка не должна
// прерываться из-за некорректного уровня, берётся ближайший допустимый.
func ClampStage(stage int) int {
	if stage < 1 {
		return 1
	}
	if stage > len(stages) {
		return len(stages)
	}
	return stage
}

// Generate создаёт новый вопрос для указанного уровня и возраста игрока.
// exclude содержит тексты вопросов, которые не должны выдаваться повторно
// (уже решённые в этой сессии). Каждый вопрос получает свежий uuid.
func (g *Generator) Generate(stage, playerAge int, exclude map[string]struct{}) Question {
	g.mu.Lock()
	defer g.mu.Unlock()

	params := stages[ClampStage(stage)-1]
	if playerAge > 0 && playerAge < youngPlayerAge {
		params = stageParams{maxAddSub: 10, ops: []string{"+"}}
		if params.maxAddSub > stages[ClampStage(stage)-1].maxAddSub {
			params.maxAddSub = stages[ClampStage(stage)-1].maxAddSub
		}
	}

	var q Question
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		q = g.roll(params)
		if _, seen := exclude[q.Text]; !seen {
			break
		}
	}

	q.ID = uuid.NewString()
	return q
}

// roll генерирует один вопрос без учёта исключений
func (g *Generator) roll(params stageParams) Question {
	op := params.ops[g.rnd.Intn(len(params.ops))]

	var x, y int
	switch op {
	case "*":
		x = g.rnd.Intn(params.maxMul-1) + 2
		y = g.rnd.Intn(params.maxMul-1) + 2
	default:
		x = g.rnd.Intn(params.maxAddSub) + 1
		y = g.rnd.Intn(params.maxAddSub) + 1
	}

	// Для вычитания результат не должен быть отрицательным
	if op == "-" && y > x {
		x, y = y, x
	}

	var answer int
	switch op {
	case "+":
		answer = x + y
	case "-":
		answer = x - y
	case "*":
		answer = x * y
	}

	return Question{
		X:      x,
		Y:      y,
		Op:     op,
		Answer: answer,
		Text:   fmt.Sprintf("%d %s %d =", x, op, y),
	}
}
