package service

import "github.com/cangchu-next/internal/constants"

// allowedOrderTransitions 履约订单线性状态机：
// pending → confirmed → picking → packed → shipped，任一非终态可转 cancelled。
var allowedOrderTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPicking:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPicking: {
		constants.OrderStatusPacked:    true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPacked: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
}

// canTransitionOrder 判定订单状态流转是否合法
func canTransitionOrder(from, to string) bool {
	targets, ok := allowedOrderTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// isTerminalOrderStatus 判定订单状态是否终结
func isTerminalOrderStatus(status string) bool {
	return status == constants.OrderStatusShipped || status == constants.OrderStatusCancelled
}

// allowedShipmentTransitions 运单状态机：
// created → in_transit → out_for_delivery → delivered，任一非终态可转 exception。
var allowedShipmentTransitions = map[string]map[string]bool{
	constants.ShipmentStatusCreated: {
		constants.ShipmentStatusInTransit: true,
		constants.ShipmentStatusException: true,
	},
	constants.ShipmentStatusInTransit: {
		constants.ShipmentStatusOutForDelivery: true,
		constants.ShipmentStatusException:      true,
	},
	constants.ShipmentStatusOutForDelivery: {
		constants.ShipmentStatusDelivered: true,
		constants.ShipmentStatusException: true,
	},
}

// canTransitionShipment 判定运单状态流转是否合法（原状态重复上报视为合法）
func canTransitionShipment(from, to string) bool {
	if from == to {
		return true
	}
	targets, ok := allowedShipmentTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}
