package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pizzeria-agent/internal/llm"
)

// judgeResponse representa la respuesta estructurada del juez evaluador en formato JSON.
type judgeResponse struct {
	Reasoning     string `json:"reasoning"`
	BehaviorScore int    `json:"behavior_score"`
	GroundedScore int    `json:"grounded_score"`
}

func evaluateResponse(ctx context.Context, judge llm.LLMClient, sc Scenario, reply string, actions []string) (judgeResponse, error) {
	prompt := buildJudgePrompt(sc, reply, actions)

	result, err := judge.Chat(ctx, []llm.ChatMessage{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return judgeResponse{}, err
	}
	raw := result.Content

	// robustez: extraemos el primer JSON balanceado
	jsonStr := extractFirstJSONObject(raw)
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("juez devolvio no-json: %q", raw)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("error parseando JSON juez: %w (raw=%q)", err, jsonStr)
	}

	jr.BehaviorScore = clamp1to5(jr.BehaviorScore)
	jr.GroundedScore = clamp1to5(jr.GroundedScore)
	return jr, nil
}

func buildJudgePrompt(sc Scenario, reply string, actions []string) string {
	actionsLine := "ninguna"
	if len(actions) > 0 {
		actionsLine = strings.Join(actions, ", ")
	}
	return fmt.Sprintf(
		`Eres un juez experto que evalua a un asistente conversacional de una pizzeria.

Input Usuario: %q
Respuesta Asistente: %q
Acciones ejecutadas en el turno: %s
Comportamiento esperado: %s

Evalua (1-5):
1) Comportamiento: la respuesta y las acciones ejecutadas coinciden con lo esperado
   (1=hace otra cosa o inventa datos, 5=exactamente lo esperado).
2) Fundamento: lo que afirma sale de los resultados de acciones o de lo dicho por
   el usuario, sin datos inventados (1=inventa, 5=todo fundamentado).

Responde SOLO JSON (sin markdown):
{
  "reasoning": "...",
  "behavior_score": 0,
  "grounded_score": 0
}`,
		sc.Input, reply, actionsLine, sc.ExpectedBehavior,
	)
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado.
func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
