// Package docs Parking Radar Engine API.
//
// Движок поиска парковок для map-клиента. Принимает события остановки
// вьюпорта карты, решает, оправдан ли новый поиск (географический кеш,
// квоты external-провайдера, порог сдвига), объединяет собственные
// парковки с результатами стороннего places-провайдера и публикует
// единый отсортированный список.
//
// Основные возможности:
// - Приём settle/locate событий карты
// - Географический кеш с выборкой по ближайшей записи
// - Квотирование запросов к external-провайдеру (минута/сутки)
// - Живые обновления занятости через push-канал inventory-бэкенда
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
