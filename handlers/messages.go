package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pmbackend/clients"
	"pmbackend/models"
	"pmbackend/usecases/agents"
)

type MessagesHandler struct {
	agentsUseCase *agents.AgentsUseCase
}

func NewMessagesHandler(agentsUseCase *agents.AgentsUseCase) *MessagesHandler {
	return &MessagesHandler{
		agentsUseCase: agentsUseCase,
	}
}

func (h *MessagesHandler) HandleMessage(client *clients.Client, msg any) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Failed to marshal message from client %s: %v", client.ID, err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var parsedMsg models.BaseMessage
	if err := json.Unmarshal(msgBytes, &parsedMsg); err != nil {
		log.Printf("❌ Failed to parse message from client %s: %v", client.ID, err)
		return fmt.Errorf("failed to parse message: %w", err)
	}

	log.Printf(
		"📋 Processing message %s from agent (Organization: %s, Computer: %s)",
		parsedMsg.ID,
		client.OrganizationID,
		client.ComputerID,
	)

	switch parsedMsg.Type {
	case models.MessageTypeComputerStatus:
		var payload models.ComputerStatusPayload
		if err := unmarshalPayload(parsedMsg.Payload, &payload); err != nil {
			log.Printf("❌ Failed to unmarshal computer status payload from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to unmarshal computer status payload: %w", err)
		}

		log.Printf("💓 Received computer status from client %s", client.ID)
		if err := h.agentsUseCase.ProcessComputerStatus(context.Background(), client, payload); err != nil {
			log.Printf("❌ Failed to process computer status from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to process computer status: %w", err)
		}

	case models.MessageTypeSessionStarted:
		var payload models.SessionStartedPayload
		if err := unmarshalPayload(parsedMsg.Payload, &payload); err != nil {
			log.Printf("❌ Failed to unmarshal session started payload from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to unmarshal session started payload: %w", err)
		}

		log.Printf("🟢 Received session started from client %s: %s", client.ID, payload.SessionID)
		if err := h.agentsUseCase.ProcessSessionStarted(context.Background(), client, payload); err != nil {
			log.Printf("❌ Failed to process session started from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to process session started: %w", err)
		}

	case models.MessageTypeSessionActivity:
		var payload models.SessionActivityPayload
		if err := unmarshalPayload(parsedMsg.Payload, &payload); err != nil {
			log.Printf("❌ Failed to unmarshal session activity payload from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to unmarshal session activity payload: %w", err)
		}

		log.Printf("📥 Received session activity from client %s: %s", client.ID, payload.SessionID)
		if err := h.agentsUseCase.ProcessSessionActivity(context.Background(), client, payload); err != nil {
			log.Printf("❌ Failed to process session activity from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to process session activity: %w", err)
		}

	case models.MessageTypeSessionEnded:
		var payload models.SessionEndedPayload
		if err := unmarshalPayload(parsedMsg.Payload, &payload); err != nil {
			log.Printf("❌ Failed to unmarshal session ended payload from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to unmarshal session ended payload: %w", err)
		}

		log.Printf("🔴 Received session ended from client %s: %s", client.ID, payload.SessionID)
		if err := h.agentsUseCase.ProcessSessionEnded(context.Background(), client, payload); err != nil {
			log.Printf("❌ Failed to process session ended from client %s: %v", client.ID, err)
			return fmt.Errorf("failed to process session ended: %w", err)
		}

	default:
		log.Printf("⚠️ Unknown message type '%s' from client %s", parsedMsg.Type, client.ID)
		return fmt.Errorf("unknown message type: %s", parsedMsg.Type)
	}

	return nil
}

func unmarshalPayload(payload any, target any) error {
	if payload == nil {
		return nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(payloadBytes, target)
}
