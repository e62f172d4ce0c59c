package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ConditionOperator - оператор сравнения внутри одного условия.
type ConditionOperator string

const (
	OpEqual        ConditionOperator = "=="
	OpNotEqual     ConditionOperator = "!="
	OpGreater      ConditionOperator = ">"
	OpGreaterEqual ConditionOperator = ">="
	OpLess         ConditionOperator = "<"
	OpLessEqual    ConditionOperator = "<="
)

// Valid сообщает, является ли оператор одним из поддерживаемых.
func (op ConditionOperator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	}
	return false
}

// ConditionClause - одно сравнение: значение свойства персонажа
// против литерального значения.
type ConditionClause struct {
	PropertyID uuid.UUID
	Operator   ConditionOperator
	Value      string
}

// Condition - сериализуемый список сравнений. Семантика конъюнктивная:
// условие выполнено, только если выполнены ВСЕ сравнения.
// Пустое условие всегда истинно.
//
// Формат хранения - JSON массив троек:
//
//	[["<property-uuid>", "==", "true"], ["<property-uuid>", ">=", "3"]]
type Condition []ConditionClause

// MarshalJSON сериализует условие в формат троек.
func (c Condition) MarshalJSON() ([]byte, error) {
	triples := make([][3]string, 0, len(c))
	for _, clause := range c {
		triples = append(triples, [3]string{
			clause.PropertyID.String(),
			string(clause.Operator),
			clause.Value,
		})
	}
	return json.Marshal(triples)
}

// UnmarshalJSON разбирает условие из формата троек.
func (c *Condition) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCondition(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCondition разбирает сырой текст условия (JSON массив троек).
// Пустая строка, "null" и "[]" дают пустое условие.
func ParseCondition(raw []byte) (Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var triples [][]string
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, fmt.Errorf("malformed condition: %w", err)
	}

	cond := make(Condition, 0, len(triples))
	for i, triple := range triples {
		if len(triple) != 3 {
			return nil, fmt.Errorf("malformed condition: clause %d has %d elements, want 3", i, len(triple))
		}
		propertyID, err := uuid.Parse(triple[0])
		if err != nil {
			return nil, fmt.Errorf("malformed condition: clause %d property id: %w", i, err)
		}
		op := ConditionOperator(triple[1])
		if !op.Valid() {
			return nil, fmt.Errorf("malformed condition: clause %d has unknown operator %q", i, triple[1])
		}
		cond = append(cond, ConditionClause{
			PropertyID: propertyID,
			Operator:   op,
			Value:      triple[2],
		})
	}
	return cond, nil
}
