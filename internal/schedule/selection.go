package schedule

import (
	"errors"
	"sort"
	"time"
)

// DragMode - что делает протяжка с накопленными слотами
type DragMode string

const (
	DragAdd    DragMode = "add"
	DragRemove DragMode = "remove"
)

type selectionState int

const (
	selectionIdle selectionState = iota
	selectionSelecting
	selectionSubmitting
)

var ErrSelectionNotActive = errors.New("drag selection is not active")

// DragSelection - явная машина состояний протяжки:
// idle -> selecting -> submitting -> idle. Между начальным и конечным
// жестом накапливается множество ключей слотов, затем они отправляются
// одной пачкой; до подтверждения отправки машина держит слоты в
// submitting, чтобы их можно было подсвечивать. Машина не привязана
// ни к какой событийной системе UI.
type DragSelection struct {
	state selectionState
	mode  DragMode
	keys  map[int64]Interval // ключ - старт слота в UnixNano
}

func NewDragSelection() *DragSelection {
	return &DragSelection{keys: make(map[int64]Interval)}
}

// Active - идёт ли выделение
func (d *DragSelection) Active() bool {
	return d.state == selectionSelecting
}

// Submitting - ждёт ли пачка подтверждения отправки
func (d *DragSelection) Submitting() bool {
	return d.state == selectionSubmitting
}

// Begin начинает выделение с первого слота. Повторный Begin
// перезапускает машину из любого состояния, включая незавершённую
// отправку.
func (d *DragSelection) Begin(mode DragMode, slot Interval) {
	d.state = selectionSelecting
	d.mode = mode
	d.keys = map[int64]Interval{slot.Start.UnixNano(): slot}
}

// Extend добавляет слот к выделению; дубликаты схлопываются
func (d *DragSelection) Extend(slot Interval) error {
	if d.state != selectionSelecting {
		return ErrSelectionNotActive
	}
	d.keys[slot.Start.UnixNano()] = slot
	return nil
}

// Contains - выбран ли слот с данным стартом
func (d *DragSelection) Contains(start time.Time) bool {
	_, ok := d.keys[start.UnixNano()]
	return ok
}

// Finish завершает выделение и возвращает режим и накопленные слоты,
// отсортированные по началу. Машина переходит в submitting и остаётся
// там до Complete или Cancel.
func (d *DragSelection) Finish() (DragMode, []Interval, error) {
	if d.state != selectionSelecting {
		return "", nil, ErrSelectionNotActive
	}

	slots := make([]Interval, 0, len(d.keys))
	for _, s := range d.keys {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})

	d.state = selectionSubmitting
	return d.mode, slots, nil
}

// Complete подтверждает, что отправленная пачка обработана (успешно
// или нет), и возвращает машину в idle
func (d *DragSelection) Complete() error {
	if d.state != selectionSubmitting {
		return ErrSelectionNotActive
	}
	d.reset()
	return nil
}

// Cancel сбрасывает машину из любого состояния без отправки
func (d *DragSelection) Cancel() {
	d.reset()
}

func (d *DragSelection) reset() {
	d.state = selectionIdle
	d.mode = ""
	d.keys = make(map[int64]Interval)
}
