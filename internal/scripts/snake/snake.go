// Package snake implements the classic snake game as a sprite script. The
// snake moves on a grid of CellSize pixel cells, grows when it eats and dies
// on the canvas edge or its own body.
package snake

import (
	"math/rand"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Tuning constants
const (
	CellSize       = 8 // pixels
	MoveEveryTicks = 6
	StartLength    = 3
	Seed           = 7
	BestKey        = "best_length"
)

// Cell colors
var (
	HeadColor = core.Color{R: 0.6, G: 1, B: 0.6, A: 1}
	BodyColor = core.Color{R: 0.2, G: 0.75, B: 0.3, A: 1}
	DeadColor = core.Color{R: 0.45, G: 0.45, B: 0.45, A: 1}
	FoodColor = core.Color{R: 0.95, G: 0.25, B: 0.25, A: 1}
)

// Direction represents the snake's movement direction.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// Point is a grid cell.
type Point struct {
	X, Y int
}

// Script implements the snake game.
type Script struct {
	rng        *rand.Rand
	cols, rows int
	offX, offY float32

	// Snake state
	snake      []Point // Head at index 0
	direction  Direction
	nextDir    Direction // Buffered direction for next move
	moveTicker int
	food       Point
	gameOver   bool
	best       int

	tex     core.TextureID
	ids     []core.EntityID // ids[0] is the food, then one per segment
	builder *exchange.FrameBuilder
}

// New creates a snake script.
func New() *Script {
	return &Script{}
}

// ID returns the unique identifier for this script.
func (s *Script) ID() string {
	return "snake"
}

// Title returns the display name for this script.
func (s *Script) Title() string {
	return "Snake"
}

// Start sizes the grid to the canvas and spawns the snake.
func (s *Script) Start(h script.Host) error {
	w, ht := h.CanvasSize()
	s.cols = int(w) / CellSize
	s.rows = int(ht) / CellSize
	s.offX = (w - float32(s.cols*CellSize)) / 2
	s.offY = (ht - float32(s.rows*CellSize)) / 2
	s.ids = s.ids[:0]

	if v, ok, err := h.Restore(BestKey); err != nil {
		return err
	} else if ok {
		if n, isNum := script.Number(v); isNum {
			s.best = int(n)
		}
	}

	tex, err := h.RegisterTextureRGBA("cell", 1, 1, texture.Solid(1, 1, core.White))
	if err != nil {
		return err
	}
	s.tex = tex
	s.builder = h.FrameBuilder(h.NewTransformBuffer(64), h.NewSpriteBuffer(64))
	h.SetClearColor(core.Color{R: 0.05, G: 0.07, B: 0.05, A: 1})

	s.reset(Seed)
	return nil
}

// reset places a fresh snake in the middle row and spawns food.
func (s *Script) reset(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
	s.gameOver = false
	s.moveTicker = 0

	startX := s.cols / 4
	startY := s.rows / 2
	s.snake = s.snake[:0]
	for i := StartLength - 1; i >= 0; i-- {
		s.snake = append(s.snake, Point{X: startX + i, Y: startY})
	}
	s.direction = DirRight
	s.nextDir = DirRight
	s.spawnFood()
}

// Update moves the snake every MoveEveryTicks ticks and submits the grid.
// Space or enter restarts after a game over.
func (s *Script) Update(h script.Host, dt float64) error {
	in := h.Input()

	if s.gameOver {
		if in.Has("space") || in.Has("enter") {
			s.reset(s.rng.Int63())
		}
		return s.submit(h)
	}

	s.processInput(in)

	s.moveTicker++
	if s.moveTicker >= MoveEveryTicks {
		s.moveTicker = 0
		s.moveSnake()
	}

	if len(s.snake) > s.best {
		s.best = len(s.snake)
		if err := h.Persist(BestKey, s.best); err != nil {
			return err
		}
	}
	return s.submit(h)
}

// processInput handles direction changes.
func (s *Script) processInput(in core.InputSnapshot) {
	newDir := s.nextDir

	switch {
	case in.Has("up"):
		newDir = DirUp
	case in.Has("down"):
		newDir = DirDown
	case in.Has("left"):
		newDir = DirLeft
	case in.Has("right"):
		newDir = DirRight
	}

	// Prevent instant reversal
	if !isOpposite(newDir, s.direction) {
		s.nextDir = newDir
	}
}

func isOpposite(d1, d2 Direction) bool {
	return (d1 == DirUp && d2 == DirDown) ||
		(d1 == DirDown && d2 == DirUp) ||
		(d1 == DirLeft && d2 == DirRight) ||
		(d1 == DirRight && d2 == DirLeft)
}

// moveSnake moves the snake one cell in the current direction.
func (s *Script) moveSnake() {
	s.direction = s.nextDir

	head := s.snake[0]
	switch s.direction {
	case DirUp:
		head.Y--
	case DirDown:
		head.Y++
	case DirLeft:
		head.X--
	case DirRight:
		head.X++
	}

	if head.X < 0 || head.X >= s.cols || head.Y < 0 || head.Y >= s.rows {
		s.gameOver = true
		return
	}

	// The tail cell is free unless the snake eats this step
	ate := head == s.food
	checkLen := len(s.snake)
	if !ate {
		checkLen--
	}
	for i := 0; i < checkLen; i++ {
		if s.snake[i] == head {
			s.gameOver = true
			return
		}
	}

	s.snake = append(s.snake, Point{})
	copy(s.snake[1:], s.snake)
	s.snake[0] = head

	// Keep the tail when eating
	if ate {
		s.spawnFood()
	} else {
		s.snake = s.snake[:len(s.snake)-1]
	}
}

// spawnFood places food at a random empty cell. A full grid ends the game.
func (s *Script) spawnFood() {
	var empty []Point
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			p := Point{X: x, Y: y}
			if !s.occupied(p) {
				empty = append(empty, p)
			}
		}
	}
	if len(empty) == 0 {
		s.food = Point{X: -1, Y: -1}
		s.gameOver = true
		return
	}
	s.food = empty[s.rng.Intn(len(empty))]
}

func (s *Script) occupied(p Point) bool {
	for _, seg := range s.snake {
		if seg == p {
			return true
		}
	}
	return false
}

// submit writes the food and every segment through the frame builder.
func (s *Script) submit(h script.Host) error {
	for len(s.ids) < len(s.snake)+1 {
		s.ids = append(s.ids, h.CreateEntity())
	}

	row := 0
	if s.food.X >= 0 {
		row++
		if err := s.cell(row, s.ids[0], s.food, FoodColor); err != nil {
			return err
		}
	}
	for i, p := range s.snake {
		c := BodyColor
		switch {
		case s.gameOver:
			c = DeadColor
		case i == 0:
			c = HeadColor
		}
		row++
		if err := s.cell(row, s.ids[i+1], p, c); err != nil {
			return err
		}
	}
	s.builder.Commit()
	return nil
}

func (s *Script) cell(row int, id core.EntityID, p Point, c core.Color) error {
	x := s.offX + float32(p.X*CellSize) + CellSize/2
	y := s.offY + float32(p.Y*CellSize) + CellSize/2
	if err := s.builder.TransformPx(row, id, x, y, 0, CellSize-1, CellSize-1); err != nil {
		return err
	}
	return s.builder.SpriteTex(row, id, s.tex, core.FullUV, c)
}

// Head returns the head cell.
func (s *Script) Head() Point {
	return s.snake[0]
}

// Length returns the number of segments.
func (s *Script) Length() int {
	return len(s.snake)
}

// Best returns the longest snake seen, including persisted runs.
func (s *Script) Best() int {
	return s.best
}

// GameOver returns true once the snake crashed.
func (s *Script) GameOver() bool {
	return s.gameOver
}

// Grid returns the grid size in cells.
func (s *Script) Grid() (cols, rows int) {
	return s.cols, s.rows
}

// Register the script with the registry
func init() {
	registry.Register("snake", func() script.Script {
		return New()
	})
}
