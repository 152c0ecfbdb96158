package consolesvc

import (
	"fmt"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// Action holds the fixed user messages of one view action.
type Action struct {
	// Success is shown when the Success variant arrives.
	Success string
	// Failure prefixes the server message on a Domain Failure.
	Failure string
}

// FailureMessage renders a Domain Failure; the server message is kept verbatim.
func (a Action) FailureMessage(d domain.ErrorDetail) string {
	return fmt.Sprintf("%s: %s", a.Failure, d.Message)
}

// GenericMessage is shown for a Transport Failure.
func (a Action) GenericMessage() string {
	return a.Failure + "."
}

//nolint:gochecknoglobals
var (
	ActionSearchProduct     = Action{Success: "¡Producto encontrado!", Failure: "Error al buscar el producto"}
	ActionCreateProduct     = Action{Success: "¡Producto creado exitosamente!", Failure: "Error al crear el producto"}
	ActionUpdateProduct     = Action{Success: "¡Producto actualizado exitosamente!", Failure: "Error al actualizar el producto"}
	ActionDeleteProduct     = Action{Success: "¡Producto eliminado exitosamente!", Failure: "Error al eliminar el producto"}
	ActionActivateProduct   = Action{Success: "¡Producto activado exitosamente!", Failure: "Error al activar el producto"}
	ActionDeactivateProduct = Action{Success: "¡Producto desactivado exitosamente!", Failure: "Error al desactivar el producto"}
	ActionLoadProducts      = Action{Failure: "Error al cargar los productos"}

	ActionSearchOrder  = Action{Success: "¡Orden encontrada!", Failure: "Error al buscar la orden"}
	ActionCreateOrder  = Action{Success: "¡Orden creada exitosamente!", Failure: "Error al crear la orden"}
	ActionReceiveOrder = Action{Success: "¡Orden marcada como recibida!", Failure: "Error al actualizar la orden"}
	ActionCancelOrder  = Action{Success: "¡Orden cancelada!", Failure: "Error al cancelar la orden"}
	ActionLoadOrders   = Action{Failure: "Error al cargar las órdenes"}
)

// Messages for locally rejected input.
const (
	MsgSelectProduct     = "Por favor, selecciona un producto."
	MsgEnterOrderID      = "Por favor, ingresa un ID de orden."
	MsgEnterProductID    = "Por favor, ingresa un ID de producto."
	MsgInvalidQuantity   = "Por favor, ingresa una cantidad válida."
	MsgInvalidProduct    = "Por favor, revisa el precio y las traducciones del producto."
	MsgNotAllowed        = "No tienes permisos para realizar esta acción."
	MsgBusy              = "Ya hay una operación en curso."
	MsgNoEdit            = "No hay ningún producto en edición."
	MsgProductNotLoaded  = "El producto no está en la lista actual."
	MsgLoginFailed       = "Invalid credentials or request format."
	MsgLoggedOut         = "Sesión cerrada."
	MsgLoggedIn          = "Sesión iniciada."
	MsgDefaultProductDsc = "Descripción del producto"
	MsgNoDescription     = "Sin descripción"
	MsgConnection        = "No se pudo conectar con el servidor."
)
