package httpclient

import (
	"net/http"
	"slices"
)

var (
	SuccessCodes     = []int{http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent}
	ClientErrorCodes = []int{http.StatusBadRequest, http.StatusUnauthorized}
	ServerErrorCodes = []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout}
)

func IsSuccess(code int) bool     { return slices.Contains(SuccessCodes, code) }
func IsClientError(code int) bool { return slices.Contains(ClientErrorCodes, code) }
func IsServerError(code int) bool { return slices.Contains(ServerErrorCodes, code) }
